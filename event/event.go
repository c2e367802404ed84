// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package event defines the registry's notification stream. Notifications
// carry the operation outcome the moment it commits; their order within one
// operation is fixed and observable.
package event

import (
	"math/big"
	"sync"

	"github.com/vechain/priorq/priorq"
)

// Notification names.
const (
	WalletRegistered = "WalletRegistered"
	EnteredQueue     = "EnteredQueue"
	QueueUpdated     = "QueueUpdated"
	ItemDequeued     = "ItemDequeued"
	StakeRemoved     = "StakeRemoved"
	StakeChanged     = "StakeChanged"
)

// Event is one notification. Fields not meaningful for a given name stay at
// their zero values.
type Event struct {
	Seq        uint64
	Name       string
	Account    priorq.Address
	ExternalID priorq.Bytes32
	Amount     *big.Int
	Position   uint64
	Time       uint64
}

// Notifier receives the ordered batch of notifications an operation emitted,
// delivered once the operation's state changes are all in place. A notifier
// error reverts the emitting operation; implementations must keep none of the
// batch on failure.
type Notifier interface {
	Notify(events []Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(events []Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(events []Event) error {
	return f(events)
}

// Sequencer is implemented by notifiers that persist the stream across
// restarts. MaxSeq returns the highest stored sequence number, zero for an
// empty stream.
type Sequencer interface {
	MaxSeq() (uint64, error)
}

// Recorder is an in-memory notifier, for tests and composition.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements Notifier.
func (r *Recorder) Notify(events []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

// Multi fans one notification batch out to several notifiers, stopping at
// the first error. Members are notified in order; place persistent sinks
// last, so that an earlier failure keeps none of the batch durable.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(events []Event) error {
	for _, n := range m {
		if err := n.Notify(events); err != nil {
			return err
		}
	}
	return nil
}

// MaxSeq implements Sequencer: the highest mark across members that persist
// the stream, zero when none do.
func (m Multi) MaxSeq() (uint64, error) {
	var max uint64
	for _, n := range m {
		s, ok := n.(Sequencer)
		if !ok {
			continue
		}
		seq, err := s.MaxSeq()
		if err != nil {
			return 0, err
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}
