// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/priorq/priorq"
)

// Address is a wrapper for storage and retrieval of an address, similar to
// storing an address in a smart contract.
type Address struct {
	context *Context
	pos     priorq.Bytes32
}

// NewAddress creates the cell at pos.
func NewAddress(context *Context, pos priorq.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

// Get loads the value; an unset slot reads as the zero address.
func (a *Address) Get() (priorq.Address, error) {
	var value priorq.Address
	err := a.context.state.DecodeStorage(a.context.address, a.pos, func(raw []byte) error {
		value = priorq.BytesToAddress(raw)
		return nil
	})
	return value, err
}

// Set stores the value. A nil or zero address clears the slot.
func (a *Address) Set(addr *priorq.Address) error {
	return a.context.state.EncodeStorage(a.context.address, a.pos, func() ([]byte, error) {
		if addr == nil || addr.IsZero() {
			return nil, nil
		}
		return addr.Bytes(), nil
	})
}
