// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package queue

import (
	"math/big"

	"github.com/vechain/priorq/priorq"
)

// Entry liveness markers. A vacated slot decodes to StatusVacant; presence in
// the queue is always decided by the status byte, never by link or position
// defaults.
const (
	StatusVacant byte = iota
	StatusLive
)

// Entry is a queued stake, keyed by a caller-supplied external ID.
type Entry struct {
	Owner     priorq.Address
	Weight    uint64
	Priority  *big.Int
	Staked    *big.Int
	Timestamp uint64
	Status    byte

	// intrusive ordering links
	Next *priorq.Bytes32 `rlp:"nil"`
	Prev *priorq.Bytes32 `rlp:"nil"`
}

// Live reports whether the entry currently occupies a queue slot.
func (e *Entry) Live() bool {
	return e.Status == StatusLive
}

func (e *Entry) normalize() *Entry {
	if e.Priority == nil {
		e.Priority = new(big.Int)
	}
	if e.Staked == nil {
		e.Staked = new(big.Int)
	}
	return e
}

// ranksAhead reports whether a is served before b: higher priority first,
// then lighter weight, then earlier timestamp. Strict on full ties, so a
// newly pushed entry lands behind equal-key holders.
func ranksAhead(a, b *Entry) bool {
	switch a.Priority.Cmp(b.Priority) {
	case 1:
		return true
	case -1:
		return false
	}
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	return a.Timestamp < b.Timestamp
}
