// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package waitlist

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/queue"
)

// EnterRequest body of POST /waitlist.
type EnterRequest struct {
	Caller   priorq.Address        `json:"caller"`
	Weight   uint64                `json:"weight"`
	Priority *math.HexOrDecimal256 `json:"priority"`
	ID       priorq.Bytes32        `json:"id"`
}

// ChangeRequest body of PUT /waitlist/{id}.
type ChangeRequest struct {
	Caller   priorq.Address        `json:"caller"`
	Weight   uint64                `json:"weight"`
	Priority *math.HexOrDecimal256 `json:"priority"`
}

// DequeueRequest body of POST /waitlist/dequeues.
type DequeueRequest struct {
	Caller priorq.Address `json:"caller"`
}

// ControllerRequest body of PUT /waitlist/controller.
type ControllerRequest struct {
	Caller     priorq.Address `json:"caller"`
	Controller priorq.Address `json:"controller"`
}

// Slot one queue entry in responses.
type Slot struct {
	ID        priorq.Bytes32        `json:"id"`
	Owner     priorq.Address        `json:"owner"`
	Weight    uint64                `json:"weight"`
	Priority  *math.HexOrDecimal256 `json:"priority"`
	Staked    *math.HexOrDecimal256 `json:"staked"`
	Timestamp uint64                `json:"timestamp"`
	Position  uint64                `json:"position"`
}

func newSlot(id priorq.Bytes32, entry *queue.Entry, position uint64) *Slot {
	return &Slot{
		ID:        id,
		Owner:     entry.Owner,
		Weight:    entry.Weight,
		Priority:  (*math.HexOrDecimal256)(entry.Priority),
		Staked:    (*math.HexOrDecimal256)(entry.Staked),
		Timestamp: entry.Timestamp,
		Position:  position,
	}
}

// Supply response of GET /waitlist/supply.
type Supply struct {
	Accrued     *math.HexOrDecimal256 `json:"accrued"`
	Minted      *math.HexOrDecimal256 `json:"minted"`
	Burned      *math.HexOrDecimal256 `json:"burned"`
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
	Destroyed   *math.HexOrDecimal256 `json:"destroyed"`
}
