// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package queue

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
)

func newTestQueue() *Queue {
	return New(priorq.BytesToAddress([]byte("queue")), state.New())
}

func id(s string) priorq.Bytes32 {
	return priorq.BytesToBytes32([]byte(s))
}

func entry(owner string, weight uint64, priority, staked int64, ts uint64) *Entry {
	return &Entry{
		Owner:     priorq.BytesToAddress([]byte(owner)),
		Weight:    weight,
		Priority:  big.NewInt(priority),
		Staked:    big.NewInt(staked),
		Timestamp: ts,
	}
}

// assertOrdered checks the full comparator order and the position/snapshot
// agreement after a mutation.
func assertOrdered(t *testing.T, q *Queue) {
	items, err := q.Entries()
	require.NoError(t, err)

	for i := 1; i < len(items); i++ {
		a, b := items[i-1].Entry, items[i].Entry
		assert.False(t, ranksAhead(b, a), "entry %d ranks ahead of its predecessor", i)
	}

	seen := make(map[priorq.Bytes32]bool)
	for i, item := range items {
		assert.False(t, seen[item.ID], "duplicate id in snapshot")
		seen[item.ID] = true

		pos, err := q.PositionOf(item.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), pos)
	}

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(items)), n)
}

func TestPushOrdering(t *testing.T) {
	q := newTestQueue()

	// same weight, higher priority wins the head
	require.NoError(t, q.Push(id("first"), entry("a", 2, 5, 19, 10)))
	require.NoError(t, q.Push(id("second"), entry("b", 2, 10, 38, 20)))

	pos, err := q.PositionOf(id("second"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	pos, err = q.PositionOf(id("first"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	assertOrdered(t, q)
}

func TestPushTieBreaks(t *testing.T) {
	q := newTestQueue()

	// equal priority: lighter weight first
	require.NoError(t, q.Push(id("heavy"), entry("a", 9, 7, 0, 10)))
	require.NoError(t, q.Push(id("light"), entry("b", 3, 7, 0, 20)))

	pos, err := q.PositionOf(id("light"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	// full tie: earlier timestamp first, newcomer goes behind
	require.NoError(t, q.Push(id("late"), entry("c", 3, 7, 0, 30)))
	pos, err = q.PositionOf(id("late"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	assertOrdered(t, q)
}

func TestPushDuplicate(t *testing.T) {
	q := newTestQueue()

	require.NoError(t, q.Push(id("x"), entry("a", 2, 5, 19, 10)))
	assert.ErrorIs(t, q.Push(id("x"), entry("a", 2, 6, 22, 20)), ErrAlreadyQueued)

	// a vacated id may be reused
	_, err := q.Remove(id("x"))
	require.NoError(t, err)
	require.NoError(t, q.Push(id("x"), entry("a", 2, 6, 22, 30)))
}

func TestRemove(t *testing.T) {
	q := newTestQueue()

	_, err := q.Remove(id("missing"))
	assert.ErrorIs(t, err, ErrNotInQueue)

	require.NoError(t, q.Push(id("a"), entry("a", 2, 5, 19, 10)))
	require.NoError(t, q.Push(id("b"), entry("b", 2, 10, 38, 20)))
	require.NoError(t, q.Push(id("c"), entry("c", 2, 1, 3, 30)))

	// remove from the middle
	removed, err := q.Remove(id("a"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(19), removed.Staked)
	assert.False(t, removed.Live())
	assertOrdered(t, q)

	has, err := q.Has(id("a"))
	require.NoError(t, err)
	assert.False(t, has)

	total, err := q.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(41), total)
}

func TestPop(t *testing.T) {
	q := newTestQueue()

	_, _, err := q.Pop()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, q.Push(id("lo"), entry("a", 2, 5, 19, 10)))
	require.NoError(t, q.Push(id("hi"), entry("b", 2, 10, 38, 20)))

	popID, popped, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, id("hi"), popID)
	assert.Equal(t, big.NewInt(10), popped.Priority)
	assertOrdered(t, q)

	popID, _, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, id("lo"), popID)

	_, _, err = q.Pop()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReprice(t *testing.T) {
	q := newTestQueue()

	_, err := q.Reprice(id("missing"), 2, big.NewInt(1), big.NewInt(1), 10)
	assert.ErrorIs(t, err, ErrNotInQueue)

	require.NoError(t, q.Push(id("a"), entry("a", 2, 5, 19, 10)))
	require.NoError(t, q.Push(id("b"), entry("b", 2, 10, 38, 20)))

	// lift a over b
	moved, err := q.Reprice(id("a"), 2, big.NewInt(20), big.NewInt(76), 30)
	require.NoError(t, err)
	assert.True(t, moved)

	pos, err := q.PositionOf(id("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	assertOrdered(t, q)

	total, err := q.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(114), total)

	// a reprice that keeps the order reports no move
	moved, err = q.Reprice(id("a"), 2, big.NewInt(21), big.NewInt(80), 40)
	require.NoError(t, err)
	assert.False(t, moved)

	updated, err := q.Get(id("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), updated.Timestamp)
	assert.Equal(t, big.NewInt(80), updated.Staked)
}

func TestZeroIDEntry(t *testing.T) {
	q := newTestQueue()

	// the all-zero id is a value like any other, linked mid-list and at the head
	var zero priorq.Bytes32
	require.NoError(t, q.Push(id("ahead"), entry("a", 2, 10, 38, 10)))
	require.NoError(t, q.Push(zero, entry("b", 2, 5, 19, 20)))
	require.NoError(t, q.Push(id("behind"), entry("c", 2, 1, 3, 30)))

	pos, err := q.PositionOf(zero)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	assertOrdered(t, q)

	popID, _, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, id("ahead"), popID)

	popID, popped, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, zero, popID)
	assert.Equal(t, big.NewInt(19), popped.Staked)
	assertOrdered(t, q)

	pos, err = q.PositionOf(id("behind"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
}

func TestOrderedUnderRandomOps(t *testing.T) {
	q := newTestQueue()
	rng := rand.New(rand.NewSource(1))

	live := make(map[priorq.Bytes32]bool)
	ids := make([]priorq.Bytes32, 0, 64)
	now := uint64(0)

	for i := 0; i < 300; i++ {
		now++
		switch op := rng.Intn(4); {
		case op == 0 && len(live) > 0:
			// remove a random live entry
			victim := ids[rng.Intn(len(ids))]
			if live[victim] {
				_, err := q.Remove(victim)
				require.NoError(t, err)
				delete(live, victim)
			}
		case op == 1 && len(live) > 0:
			victim := ids[rng.Intn(len(ids))]
			if live[victim] {
				_, err := q.Reprice(victim, uint64(rng.Intn(9)+2), big.NewInt(int64(rng.Intn(50))), big.NewInt(int64(rng.Intn(200))), now)
				require.NoError(t, err)
			}
		case op == 2 && len(live) > 0:
			headID, _, err := q.Pop()
			require.NoError(t, err)
			delete(live, headID)
		default:
			newID := priorq.Blake2b([]byte{byte(i), byte(i >> 8)})
			require.NoError(t, q.Push(newID, entry("owner", uint64(rng.Intn(9)+2), int64(rng.Intn(50)), int64(rng.Intn(200)), now)))
			live[newID] = true
			ids = append(ids, newID)
		}
		assertOrdered(t, q)
	}

	// counters agree with a model of the live set
	total, err := q.TotalStaked()
	require.NoError(t, err)
	sum := new(big.Int)
	items, err := q.Entries()
	require.NoError(t, err)
	assert.Equal(t, len(live), len(items))
	for _, item := range items {
		assert.True(t, live[item.ID])
		sum.Add(sum, item.Entry.Staked)
	}
	assert.Equal(t, sum, total)
}

func TestCheckpointRevertRestoresQueue(t *testing.T) {
	st := state.New()
	q := New(priorq.BytesToAddress([]byte("queue")), st)

	require.NoError(t, q.Push(id("keep"), entry("a", 2, 5, 19, 10)))

	checkpoint := st.NewCheckpoint()
	require.NoError(t, q.Push(id("drop"), entry("b", 2, 10, 38, 20)))
	st.RevertTo(checkpoint)

	has, err := q.Has(id("drop"))
	require.NoError(t, err)
	assert.False(t, has)

	pos, err := q.PositionOf(id("keep"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	total, err := q.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(19), total)
}
