// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/vechain/priorq/priorq"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr priorq.Address
	key  priorq.Bytes32
}

// undo records the previous raw value of a slot so a revert can restore it.
type undo struct {
	key  storageKey
	prev []byte
	had  bool
}

// State manages the registry world state. Raw storage slots are namespaced
// by address so the ledger, the queue and the role table never collide.
// All writes are journaled; NewCheckpoint/RevertTo give save-restore
// semantics in the manner of a stacked map.
type State struct {
	storage map[storageKey][]byte
	journal []undo
}

// New creates an empty state.
func New() *State {
	return &State{
		storage: make(map[storageKey][]byte),
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns a revision to be used with RevertTo.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo reverts the state to the checkpoint specified by revision,
// undoing every write journaled since.
func (s *State) RevertTo(revision int) {
	for i := len(s.journal) - 1; i >= revision; i-- {
		entry := s.journal[i]
		if entry.had {
			s.storage[entry.key] = entry.prev
		} else {
			delete(s.storage, entry.key)
		}
	}
	s.journal = s.journal[:revision]
}

// GetRawStorage returns the raw value of the slot, or nil if unset.
func (s *State) GetRawStorage(addr priorq.Address, key priorq.Bytes32) []byte {
	return s.storage[storageKey{addr, key}]
}

// SetRawStorage sets the raw value of the slot. An empty value clears it.
func (s *State) SetRawStorage(addr priorq.Address, key priorq.Bytes32, raw []byte) {
	sk := storageKey{addr, key}
	prev, had := s.storage[sk]
	s.journal = append(s.journal, undo{key: sk, prev: prev, had: had})
	if len(raw) == 0 {
		delete(s.storage, sk)
		return
	}
	s.storage[sk] = raw
}

// EncodeStorage sets the slot to the value encoded by enc.
func (s *State) EncodeStorage(addr priorq.Address, key priorq.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage passes the raw slot value to dec. An unset slot is passed
// as an empty byte slice, which decoders treat as the zero value.
func (s *State) DecodeStorage(addr priorq.Address, key priorq.Bytes32, dec func([]byte) error) error {
	if err := dec(s.GetRawStorage(addr, key)); err != nil {
		return &Error{err}
	}
	return nil
}
