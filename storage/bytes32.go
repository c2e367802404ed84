// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/priorq/priorq"
)

// Bytes32 is a wrapper for storage and retrieval of a [32]byte value.
type Bytes32 struct {
	context *Context
	pos     priorq.Bytes32
}

// NewBytes32 creates the cell at pos.
func NewBytes32(context *Context, pos priorq.Bytes32) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

// Get loads the value, or nil when the slot is unset. Presence is the slot's
// own, so the zero value round-trips like any other.
func (b *Bytes32) Get() (*priorq.Bytes32, error) {
	var value *priorq.Bytes32
	err := b.context.state.DecodeStorage(b.context.address, b.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		value = new(priorq.Bytes32)
		copy(value[:], raw)
		return nil
	})
	return value, err
}

// Set stores the value. Only nil clears the slot; the zero value is stored
// like any other.
func (b *Bytes32) Set(value *priorq.Bytes32) error {
	return b.context.state.EncodeStorage(b.context.address, b.pos, func() ([]byte, error) {
		if value == nil {
			return nil, nil
		}
		return value.Bytes(), nil
	})
}
