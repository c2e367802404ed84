// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/priorq/priorq"
)

// ErrNegative the arithmetic would store a negative value.
var ErrNegative = errors.New("negative uint256 value")

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit
// integer, similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     priorq.Bytes32
}

// NewUint256 creates the cell at pos.
func NewUint256(context *Context, pos priorq.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

// Get loads the value; an unset slot reads as zero.
func (u *Uint256) Get() (*big.Int, error) {
	var value big.Int
	err := u.context.state.DecodeStorage(u.context.address, u.pos, func(raw []byte) error {
		value.SetBytes(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Set stores the value. Zero clears the slot; negative values are rejected,
// since big.Int.Bytes drops the sign.
func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return ErrNegative
	}
	return u.context.state.EncodeStorage(u.context.address, u.pos, func() ([]byte, error) {
		return value.Bytes(), nil
	})
}

// Add increments the stored value.
func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Add(stored, value)
	return u.Set(stored)
}

// Sub decrements the stored value. It fails with ErrNegative when the result
// would underflow, leaving the slot untouched.
func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Sub(stored, value)
	if stored.Sign() < 0 {
		return ErrNegative
	}
	return u.Set(stored)
}
