// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package queue implements the stake waitlist as a doubly linked list held in
// keyed storage. The list is fully ordered after every mutation: higher
// priority first, then lighter weight, then earlier timestamp. Position zero
// is the head, the next entry to be served.
package queue

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
	"github.com/vechain/priorq/storage"
)

var (
	// ErrAlreadyQueued the external ID already holds a live slot.
	ErrAlreadyQueued = errors.New("already queued")
	// ErrNotInQueue the external ID holds no live slot.
	ErrNotInQueue = errors.New("not in queue")
	// ErrQueueEmpty the queue has no entries.
	ErrQueueEmpty = errors.New("queue empty")
)

var (
	slotEntries     = nameToSlot("entries")
	slotHead        = nameToSlot("head")
	slotTail        = nameToSlot("tail")
	slotCount       = nameToSlot("count")
	slotTotalStaked = nameToSlot("total-staked")
)

func nameToSlot(name string) priorq.Bytes32 {
	return priorq.BytesToBytes32([]byte(name))
}

// Item pairs an external ID with its entry, for ordered snapshots.
type Item struct {
	ID    priorq.Bytes32
	Entry *Entry
}

// Queue maintains the ordered waitlist in keyed storage.
type Queue struct {
	entries     *storage.Mapping[priorq.Bytes32, *Entry]
	head        *storage.Bytes32
	tail        *storage.Bytes32
	count       *storage.Uint256
	totalStaked *storage.Uint256
}

// New creates a queue bound to the given storage namespace.
func New(addr priorq.Address, st *state.State) *Queue {
	context := storage.NewContext(addr, st)
	return &Queue{
		entries:     storage.NewMapping[priorq.Bytes32, *Entry](context, slotEntries),
		head:        storage.NewBytes32(context, slotHead),
		tail:        storage.NewBytes32(context, slotTail),
		count:       storage.NewUint256(context, slotCount),
		totalStaked: storage.NewUint256(context, slotTotalStaked),
	}
}

func (q *Queue) getEntry(id priorq.Bytes32) (*Entry, error) {
	entry, err := q.entries.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get queue entry")
	}
	return entry.normalize(), nil
}

func (q *Queue) setEntry(id priorq.Bytes32, entry *Entry) error {
	if err := q.entries.Set(id, entry); err != nil {
		return errors.Wrap(err, "failed to set queue entry")
	}
	return nil
}

// Push inserts the entry at its comparator position. The entry's links and
// status are managed here; callers only fill owner, weight, priority, staked
// and timestamp.
func (q *Queue) Push(id priorq.Bytes32, entry *Entry) error {
	existing, err := q.getEntry(id)
	if err != nil {
		return err
	}
	if existing.Live() {
		return ErrAlreadyQueued
	}

	entry.normalize()
	entry.Status = StatusLive
	if err := q.insert(id, entry); err != nil {
		return err
	}

	if err := q.count.Add(big.NewInt(1)); err != nil {
		return err
	}
	return q.totalStaked.Add(entry.Staked)
}

// insert links the entry into the list at its comparator position.
func (q *Queue) insert(id priorq.Bytes32, entry *Entry) error {
	entry.Next = nil
	entry.Prev = nil

	headID, err := q.head.Get()
	if err != nil {
		return err
	}
	if headID == nil {
		if err := q.head.Set(&id); err != nil {
			return err
		}
		if err := q.tail.Set(&id); err != nil {
			return err
		}
		return q.setEntry(id, entry)
	}

	head, err := q.getEntry(*headID)
	if err != nil {
		return err
	}
	if ranksAhead(entry, head) {
		entry.Next = headID
		head.Prev = &id
		if err := q.setEntry(*headID, head); err != nil {
			return err
		}
		if err := q.setEntry(id, entry); err != nil {
			return err
		}
		return q.head.Set(&id)
	}

	currentID, current := *headID, head
	for {
		if current.Next == nil {
			// reached the tail, append
			current.Next = &id
			entry.Prev = &currentID
			if err := q.setEntry(currentID, current); err != nil {
				return err
			}
			if err := q.setEntry(id, entry); err != nil {
				return err
			}
			return q.tail.Set(&id)
		}

		nextID := *current.Next
		next, err := q.getEntry(nextID)
		if err != nil {
			return err
		}
		if ranksAhead(entry, next) {
			entry.Next = &nextID
			entry.Prev = &currentID
			current.Next = &id
			next.Prev = &id
			if err := q.setEntry(currentID, current); err != nil {
				return err
			}
			if err := q.setEntry(nextID, next); err != nil {
				return err
			}
			return q.setEntry(id, entry)
		}

		currentID, current = nextID, next
	}
}

// unlink detaches the entry from the list, fixing head/tail and neighbor
// links. The entry's own slot is untouched.
func (q *Queue) unlink(entry *Entry) error {
	if entry.Prev == nil {
		if err := q.head.Set(entry.Next); err != nil {
			return err
		}
	} else {
		prev, err := q.getEntry(*entry.Prev)
		if err != nil {
			return err
		}
		prev.Next = entry.Next
		if err := q.setEntry(*entry.Prev, prev); err != nil {
			return err
		}
	}

	if entry.Next == nil {
		if err := q.tail.Set(entry.Prev); err != nil {
			return err
		}
	} else {
		next, err := q.getEntry(*entry.Next)
		if err != nil {
			return err
		}
		next.Prev = entry.Prev
		if err := q.setEntry(*entry.Next, next); err != nil {
			return err
		}
	}

	entry.Next = nil
	entry.Prev = nil
	return nil
}

// remove unlinks a live entry, vacates its slot and settles the counters.
func (q *Queue) remove(id priorq.Bytes32, entry *Entry) error {
	if err := q.unlink(entry); err != nil {
		return err
	}
	if err := q.entries.Clear(id); err != nil {
		return err
	}
	if err := q.count.Sub(big.NewInt(1)); err != nil {
		return err
	}
	return q.totalStaked.Sub(entry.Staked)
}

// Remove vacates the entry's slot and returns the entry as it was queued.
func (q *Queue) Remove(id priorq.Bytes32) (*Entry, error) {
	entry, err := q.getEntry(id)
	if err != nil {
		return nil, err
	}
	if !entry.Live() {
		return nil, ErrNotInQueue
	}
	if err := q.remove(id, entry); err != nil {
		return nil, err
	}
	entry.Status = StatusVacant
	return entry, nil
}

// Pop removes and returns the head entry.
func (q *Queue) Pop() (priorq.Bytes32, *Entry, error) {
	headID, err := q.head.Get()
	if err != nil {
		return priorq.Bytes32{}, nil, err
	}
	if headID == nil {
		return priorq.Bytes32{}, nil, ErrQueueEmpty
	}
	entry, err := q.Remove(*headID)
	if err != nil {
		return priorq.Bytes32{}, nil, err
	}
	return *headID, entry, nil
}

// Reprice updates the entry's weight, priority and escrow, restamps it at now
// and moves it to its new comparator position. It reports whether the
// position changed.
func (q *Queue) Reprice(id priorq.Bytes32, weight uint64, priority, staked *big.Int, now uint64) (moved bool, err error) {
	entry, err := q.getEntry(id)
	if err != nil {
		return false, err
	}
	if !entry.Live() {
		return false, ErrNotInQueue
	}

	before, err := q.PositionOf(id)
	if err != nil {
		return false, err
	}

	if err := q.totalStaked.Sub(entry.Staked); err != nil {
		return false, err
	}
	if err := q.unlink(entry); err != nil {
		return false, err
	}

	entry.Weight = weight
	entry.Priority = new(big.Int).Set(priority)
	entry.Staked = new(big.Int).Set(staked)
	entry.Timestamp = now

	if err := q.insert(id, entry); err != nil {
		return false, err
	}
	if err := q.totalStaked.Add(entry.Staked); err != nil {
		return false, err
	}

	after, err := q.PositionOf(id)
	if err != nil {
		return false, err
	}
	return after != before, nil
}

// Get returns the live entry for id.
func (q *Queue) Get(id priorq.Bytes32) (*Entry, error) {
	entry, err := q.getEntry(id)
	if err != nil {
		return nil, err
	}
	if !entry.Live() {
		return nil, ErrNotInQueue
	}
	return entry, nil
}

// Has reports whether id holds a live slot.
func (q *Queue) Has(id priorq.Bytes32) (bool, error) {
	entry, err := q.getEntry(id)
	if err != nil {
		return false, err
	}
	return entry.Live(), nil
}

// PositionOf returns the entry's index from the head.
func (q *Queue) PositionOf(id priorq.Bytes32) (uint64, error) {
	position := uint64(0)
	found := false
	err := q.iter(func(itemID priorq.Bytes32, _ *Entry) bool {
		if itemID == id {
			found = true
			return false
		}
		position++
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotInQueue
	}
	return position, nil
}

// Entries returns an ordered snapshot of the queue.
func (q *Queue) Entries() ([]Item, error) {
	var items []Item
	err := q.iter(func(id priorq.Bytes32, entry *Entry) bool {
		items = append(items, Item{ID: id, Entry: entry})
		return true
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Len returns the number of live entries.
func (q *Queue) Len() (uint64, error) {
	count, err := q.count.Get()
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// TotalStaked returns the sum of live escrow.
func (q *Queue) TotalStaked() (*big.Int, error) {
	return q.totalStaked.Get()
}

// iter walks the list from the head until the callback returns false.
func (q *Queue) iter(callback func(priorq.Bytes32, *Entry) bool) error {
	ptr, err := q.head.Get()
	if err != nil {
		return err
	}
	for ptr != nil {
		entry, err := q.getEntry(*ptr)
		if err != nil {
			return err
		}
		if !entry.Live() {
			break
		}
		if !callback(*ptr, entry) {
			return nil
		}
		ptr = entry.Next
	}
	return nil
}
