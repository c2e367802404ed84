// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pricing converts (weight, priorityValue) to the stake required for
// a queue slot and back. The cost function is log1.2(weight)·priorityValue
// in Q64.64 fixed point, truncated toward zero at every step so refunds can
// reverse the original escrow exactly.
package pricing

import (
	"math/big"
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/priorq/cache"
	"github.com/vechain/priorq/priorq"
)

var (
	// ErrInvalidWeight the weight violates the logarithm's domain.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrInvalidPriority the priority value is nil or negative.
	ErrInvalidPriority = errors.New("invalid priority value")
	// ErrInvalidStake the staked amount is nil or negative.
	ErrInvalidStake = errors.New("invalid staked amount")
	// ErrAmountOverflow a value does not fit the 256-bit cost arithmetic.
	ErrAmountOverflow = errors.New("amount overflow")
)

const fracBits = 64

var (
	log2Base = uint256.NewInt(priorq.Log2PricingBaseQ64)
	two      = new(uint256.Int).Lsh(uint256.NewInt(1), fracBits+1) // 2.0 in Q64.64

	// log1.2 is pure in weight, so memoizing it is safe
	logCache, _ = cache.NewLRU(1024)
)

// log2Q64 computes log2(weight) in Q64.64 by normalize-then-square binary
// expansion, truncating the fraction at every iteration.
func log2Q64(weight uint64) *uint256.Int {
	n := bits.Len64(weight) - 1 // integer part

	// normalize the mantissa to [1, 2) in Q64.64
	x := uint256.NewInt(weight)
	x.Lsh(x, uint(fracBits-n))

	r := uint256.NewInt(uint64(n))
	r.Lsh(r, fracBits)

	bit := new(uint256.Int).Lsh(uint256.NewInt(1), fracBits-1)
	for i := 0; i < fracBits; i++ {
		x.Mul(x, x)
		x.Rsh(x, fracBits)
		if x.Cmp(two) >= 0 {
			x.Rsh(x, 1)
			r.Or(r, bit)
		}
		bit.Rsh(bit, 1)
	}
	return r
}

// LogBaseQ64 returns log1.2(weight) in Q64.64.
// It fails with ErrInvalidWeight when weight is zero (log domain).
func LogBaseQ64(weight uint64) (*uint256.Int, error) {
	if weight == 0 {
		return nil, ErrInvalidWeight
	}
	v, err := logCache.GetOrLoad(weight, func(key interface{}) (interface{}, error) {
		r := new(uint256.Int).Lsh(log2Q64(key.(uint64)), fracBits)
		return r.Div(r, log2Base), nil
	})
	if err != nil {
		return nil, err
	}
	// callers get a copy; the cached value is shared
	return new(uint256.Int).Set(v.(*uint256.Int)), nil
}

// Cost returns the stake required to hold a slot with the given weight and
// priority value: ⌊log1.2(weight)·priorityValue⌋.
func Cost(weight uint64, priority *big.Int) (*big.Int, error) {
	if priority == nil || priority.Sign() < 0 {
		return nil, ErrInvalidPriority
	}
	logw, err := LogBaseQ64(weight)
	if err != nil {
		return nil, err
	}

	p, overflow := uint256.FromBig(priority)
	if overflow {
		return nil, ErrAmountOverflow
	}
	product, overflow := new(uint256.Int).MulOverflow(p, logw)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return product.Rsh(product, fracBits).ToBig(), nil
}

// PriorityFromStake returns the approximate inverse of Cost:
// ⌊stakedCoins / log1.2(weight)⌋ with the same truncation everywhere.
// Weight one is rejected along with zero, because its zero logarithm has no
// inverse.
func PriorityFromStake(weight uint64, staked *big.Int) (*big.Int, error) {
	if staked == nil || staked.Sign() < 0 {
		return nil, ErrInvalidStake
	}
	logw, err := LogBaseQ64(weight)
	if err != nil {
		return nil, err
	}
	if logw.IsZero() {
		return nil, ErrInvalidWeight
	}

	s, overflow := uint256.FromBig(staked)
	if overflow {
		return nil, ErrAmountOverflow
	}
	if s.BitLen() > 256-fracBits {
		return nil, ErrAmountOverflow
	}
	s.Lsh(s, fracBits)
	return s.Div(s, logw).ToBig(), nil
}
