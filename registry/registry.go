// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry composes the ledger, the waitlist, the pricing function
// and the role table into the participant registry. Every operation runs
// under one mutex and inside a state checkpoint: it either commits completely,
// including its notifications, or leaves no trace.
package registry

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/priorq/access"
	"github.com/vechain/priorq/event"
	"github.com/vechain/priorq/ledger"
	"github.com/vechain/priorq/log"
	"github.com/vechain/priorq/metrics"
	"github.com/vechain/priorq/pricing"
	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/queue"
	"github.com/vechain/priorq/state"
	"github.com/vechain/priorq/storage"
)

var (
	// ErrUnregistered the caller has not registered.
	ErrUnregistered = errors.New("caller not registered")
	// ErrNotAuthorized the caller lacks the role the operation requires.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotOwner the caller is not the owner.
	ErrNotOwner = errors.New("not owner")
)

var logger = log.WithContext("pkg", "registry")

var (
	metricOpCount   = metrics.LazyLoadCounterVec("registry_ops_total", []string{"op"})
	metricOpFailed  = metrics.LazyLoadCounterVec("registry_ops_failed_total", []string{"op"})
	metricQueueSize = metrics.LazyLoadGauge("registry_queue_size")
)

// storage namespaces of the registry's components
var (
	ledgerAddress   = priorq.BytesToAddress([]byte("priorq-ledger"))
	queueAddress    = priorq.BytesToAddress([]byte("priorq-queue"))
	accessAddress   = priorq.BytesToAddress([]byte("priorq-access"))
	registryAddress = priorq.BytesToAddress([]byte("priorq-registry"))
)

var slotDestroyed = priorq.BytesToBytes32([]byte("destroyed"))

// Registry is the participant registry facade.
type Registry struct {
	mu sync.Mutex

	state    *state.State
	ledger   *ledger.Ledger
	queue    *queue.Queue
	gate     *access.Gate
	notifier event.Notifier

	// escrow destroyed by dequeues, tracked for supply accounting
	destroyed *storage.Uint256

	seq     uint64
	pending []event.Event
}

// New creates a registry over the given state with addr as the initial owner.
// A nil notifier discards notifications. A notifier that persists the stream
// (event.Sequencer) resumes the sequence where it left off.
func New(st *state.State, notifier event.Notifier, owner priorq.Address) (*Registry, error) {
	if notifier == nil {
		notifier = event.NotifierFunc(func([]event.Event) error { return nil })
	}
	gate := access.New(accessAddress, st)
	if err := gate.SetOwner(owner); err != nil {
		return nil, err
	}
	r := &Registry{
		state:     st,
		ledger:    ledger.New(ledgerAddress, st),
		queue:     queue.New(queueAddress, st),
		gate:      gate,
		notifier:  notifier,
		destroyed: storage.NewUint256(storage.NewContext(registryAddress, st), slotDestroyed),
	}
	if s, ok := notifier.(event.Sequencer); ok {
		seq, err := s.MaxSeq()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read sequence high-water mark")
		}
		r.seq = seq
	}
	return r, nil
}

// notify assigns the next sequence number and buffers the event. The buffered
// batch is delivered by run once the operation has otherwise succeeded.
func (r *Registry) notify(ev event.Event) {
	r.seq++
	ev.Seq = r.seq
	r.pending = append(r.pending, ev)
}

// run executes fn inside a state checkpoint and delivers the buffered events
// afterwards, as one batch. On any error, fn's or the notifier's, every
// storage write is reverted and the sequence counter rolled back, so an
// operation either commits with all its notifications or leaves no trace.
func (r *Registry) run(op string, fn func() error) error {
	checkpoint := r.state.NewCheckpoint()
	r.pending = r.pending[:0]

	err := fn()
	if err == nil && len(r.pending) > 0 {
		if nerr := r.notifier.Notify(r.pending); nerr != nil {
			err = errors.Wrap(nerr, "failed to notify")
		}
	}
	if err != nil {
		r.state.RevertTo(checkpoint)
		r.seq -= uint64(len(r.pending))
		r.pending = r.pending[:0]
		metricOpFailed().AddWithLabel(1, map[string]string{"op": op})
		return err
	}
	r.pending = r.pending[:0]
	metricOpCount().AddWithLabel(1, map[string]string{"op": op})
	return nil
}

func (r *Registry) gaugeQueueSize() {
	if n, err := r.queue.Len(); err == nil {
		metricQueueSize().Set(int64(n)) // #nosec G115
	}
}

// Register creates the caller's account.
func (r *Registry) Register(caller priorq.Address, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("registering account", "account", caller, "now", now)
	err := r.run("register", func() error {
		if err := r.ledger.Register(caller, now); err != nil {
			return err
		}
		r.notify(event.Event{
			Name:    event.WalletRegistered,
			Account: caller,
			Time:    now,
		})
		return nil
	})
	if err != nil {
		logger.Info("register failed", "account", caller, "error", err)
		return err
	}
	logger.Info("registered account", "account", caller)
	return nil
}

// IsRegistered reports whether the account has registered.
func (r *Registry) IsRegistered(account priorq.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.IsRegistered(account)
}

// ListRegisteredAccounts returns all registered accounts in registration
// order.
func (r *Registry) ListRegisteredAccounts() ([]priorq.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.Accounts()
}

// RegularBalance returns the live regular balance at now. The view is
// idempotent; it settles nothing.
func (r *Registry) RegularBalance(account priorq.Address, now uint64) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.RegularBalance(account, now)
}

// RestrictedBalance returns the live restricted balance at now.
func (r *Registry) RestrictedBalance(account priorq.Address, now uint64) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.RestrictedBalance(account, now)
}

// Transfer moves amount from the caller to the recipient. The restricted
// portion keeps its restriction on the recipient side.
func (r *Registry) Transfer(caller, recipient priorq.Address, amount *big.Int, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("transferring", "from", caller, "to", recipient, "amount", amount)
	err := r.run("transfer", func() error {
		return r.ledger.Transfer(caller, recipient, amount, now)
	})
	if err != nil {
		logger.Info("transfer failed", "from", caller, "to", recipient, "error", err)
		return err
	}
	logger.Info("transferred", "from", caller, "to", recipient, "amount", amount)
	return nil
}

// EnterQueue escrows the stake computed from (weight, priority) out of the
// caller's regular balance and inserts the entry at its priority position.
func (r *Registry) EnterQueue(caller priorq.Address, weight uint64, priority *big.Int, externalID priorq.Bytes32, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("entering queue", "account", caller, "id", externalID, "weight", weight, "priority", priority)
	err := r.run("enter_queue", func() error {
		registered, err := r.ledger.IsRegistered(caller)
		if err != nil {
			return err
		}
		if !registered {
			return ErrUnregistered
		}

		queued, err := r.queue.Has(externalID)
		if err != nil {
			return err
		}
		if queued {
			return queue.ErrAlreadyQueued
		}

		cost, err := pricing.Cost(weight, priority)
		if err != nil {
			return err
		}
		if err := r.ledger.Burn(caller, cost, now); err != nil {
			return err
		}
		if err := r.queue.Push(externalID, &queue.Entry{
			Owner:     caller,
			Weight:    weight,
			Priority:  new(big.Int).Set(priority),
			Staked:    cost,
			Timestamp: now,
		}); err != nil {
			return err
		}

		position, err := r.queue.PositionOf(externalID)
		if err != nil {
			return err
		}
		r.notify(event.Event{
			Name:       event.EnteredQueue,
			Account:    caller,
			ExternalID: externalID,
			Amount:     cost,
			Position:   position,
			Time:       now,
		})
		r.notify(event.Event{
			Name:       event.QueueUpdated,
			ExternalID: externalID,
			Position:   position,
			Time:       now,
		})
		return nil
	})
	if err != nil {
		logger.Info("enter queue failed", "account", caller, "id", externalID, "error", err)
		return err
	}
	r.gaugeQueueSize()
	logger.Info("entered queue", "account", caller, "id", externalID)
	return nil
}

// ChangeStake reprices the entry to (newWeight, newPriority). The escrow
// delta is burned from or refunded to the entry owner, who must be the
// caller.
func (r *Registry) ChangeStake(caller priorq.Address, newWeight uint64, newPriority *big.Int, externalID priorq.Bytes32, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("changing stake", "account", caller, "id", externalID, "weight", newWeight, "priority", newPriority)
	err := r.run("change_stake", func() error {
		entry, err := r.queue.Get(externalID)
		if err != nil {
			return err
		}
		if entry.Owner != caller {
			return ErrNotAuthorized
		}

		newCost, err := pricing.Cost(newWeight, newPriority)
		if err != nil {
			return err
		}

		delta := new(big.Int).Sub(newCost, entry.Staked)
		switch delta.Sign() {
		case 1:
			if err := r.ledger.Burn(caller, delta, now); err != nil {
				return err
			}
		case -1:
			if err := r.ledger.Mint(caller, new(big.Int).Neg(delta), now); err != nil {
				return err
			}
		}

		moved, err := r.queue.Reprice(externalID, newWeight, newPriority, newCost, now)
		if err != nil {
			return err
		}

		r.notify(event.Event{
			Name:       event.StakeChanged,
			Account:    caller,
			ExternalID: externalID,
			Amount:     newCost,
			Time:       now,
		})
		if moved {
			position, err := r.queue.PositionOf(externalID)
			if err != nil {
				return err
			}
			r.notify(event.Event{
				Name:       event.QueueUpdated,
				ExternalID: externalID,
				Position:   position,
				Time:       now,
			})
		}
		return nil
	})
	if err != nil {
		logger.Info("change stake failed", "account", caller, "id", externalID, "error", err)
		return err
	}
	logger.Info("changed stake", "account", caller, "id", externalID)
	return nil
}

// RemoveStake withdraws the entry and refunds its full escrow to the entry
// owner. The entry owner or the registry owner may remove.
func (r *Registry) RemoveStake(caller priorq.Address, externalID priorq.Bytes32, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("removing stake", "caller", caller, "id", externalID)
	err := r.run("remove_stake", func() error {
		entry, err := r.queue.Get(externalID)
		if err != nil {
			return err
		}
		if entry.Owner != caller {
			isOwner, err := r.gate.IsOwner(caller)
			if err != nil {
				return err
			}
			if !isOwner {
				return ErrNotAuthorized
			}
		}

		entry, err = r.queue.Remove(externalID)
		if err != nil {
			return err
		}
		if err := r.ledger.Mint(entry.Owner, entry.Staked, now); err != nil {
			return err
		}
		r.notify(event.Event{
			Name:       event.StakeRemoved,
			Account:    entry.Owner,
			ExternalID: externalID,
			Amount:     entry.Staked,
			Time:       now,
		})
		return nil
	})
	if err != nil {
		logger.Info("remove stake failed", "caller", caller, "id", externalID, "error", err)
		return err
	}
	r.gaugeQueueSize()
	logger.Info("removed stake", "caller", caller, "id", externalID)
	return nil
}

// Dequeue serves the head entry. Only the controller may dequeue; the served
// escrow is destroyed, not refunded.
func (r *Registry) Dequeue(caller priorq.Address, now uint64) (priorq.Bytes32, *queue.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("dequeuing", "caller", caller, "now", now)
	var (
		servedID    priorq.Bytes32
		servedEntry *queue.Entry
	)
	err := r.run("dequeue", func() error {
		isController, err := r.gate.IsController(caller)
		if err != nil {
			return err
		}
		if !isController {
			return ErrNotAuthorized
		}

		id, entry, err := r.queue.Pop()
		if err != nil {
			return err
		}
		if err := r.destroyed.Add(entry.Staked); err != nil {
			return err
		}
		r.notify(event.Event{
			Name:       event.ItemDequeued,
			Account:    entry.Owner,
			ExternalID: id,
			Amount:     entry.Staked,
			Time:       now,
		})
		servedID, servedEntry = id, entry
		return nil
	})
	if err != nil {
		logger.Info("dequeue failed", "caller", caller, "error", err)
		return priorq.Bytes32{}, nil, err
	}
	r.gaugeQueueSize()
	logger.Info("dequeued", "id", servedID, "owner", servedEntry.Owner, "destroyed", servedEntry.Staked)
	return servedID, servedEntry, nil
}

// QueuePosition returns the entry's index from the head.
func (r *Registry) QueuePosition(externalID priorq.Bytes32) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.PositionOf(externalID)
}

// QueueContents returns the ordered queue snapshot.
func (r *Registry) QueueContents() ([]queue.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Entries()
}

// SetController assigns the controller role. Only the owner may do this.
func (r *Registry) SetController(caller, controller priorq.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Debug("setting controller", "caller", caller, "controller", controller)
	err := r.run("set_controller", func() error {
		isOwner, err := r.gate.IsOwner(caller)
		if err != nil {
			return err
		}
		if !isOwner {
			return ErrNotOwner
		}
		return r.gate.SetController(controller)
	})
	if err != nil {
		logger.Info("set controller failed", "caller", caller, "error", err)
		return err
	}
	logger.Info("controller set", "controller", controller)
	return nil
}

// Owner returns the owner address.
func (r *Registry) Owner() (priorq.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.Owner()
}

// Controller returns the controller address.
func (r *Registry) Controller() (priorq.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gate.Controller()
}

// TotalStaked returns the sum of live escrow.
func (r *Registry) TotalStaked() (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.TotalStaked()
}

// Destroyed returns the escrow destroyed by dequeues.
func (r *Registry) Destroyed() (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed.Get()
}

// Supply returns the supply counters: issued by accrual, minted back by
// refunds, burned by escrows.
func (r *Registry) Supply() (accrued, minted, burned *big.Int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if accrued, err = r.ledger.TotalAccrued(); err != nil {
		return nil, nil, nil, err
	}
	if minted, err = r.ledger.TotalMinted(); err != nil {
		return nil, nil, nil, err
	}
	if burned, err = r.ledger.TotalBurned(); err != nil {
		return nil, nil, nil, err
	}
	return accrued, minted, burned, nil
}
