// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostVectors(t *testing.T) {
	// truncation direction is pinned by these vectors; refunds depend on it
	tests := []struct {
		weight   uint64
		priority int64
		cost     int64
	}{
		{2, 5, 19},     // log1.2(2)≈3.8017 → 19.008 → 19
		{2, 10, 38},    // 38.017 → 38
		{3, 7, 42},     // 6.0257·7 = 42.18 → 42
		{5, 5, 44},     // 8.8273·5 = 44.13 → 44
		{7, 3, 32},     // 10.6735·3 = 32.02 → 32
		{10, 100, 1262},
		{1000, 1, 37},
		{1, 5, 0},      // log1.2(1) = 0
		{2, 0, 0},
	}

	for _, tt := range tests {
		cost, err := Cost(tt.weight, big.NewInt(tt.priority))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(tt.cost).String(), cost.String(), "cost(%d, %d)", tt.weight, tt.priority)
	}
}

func TestCostMonotonic(t *testing.T) {
	// cost grows with priority
	prev := big.NewInt(-1)
	for p := int64(1); p <= 100; p += 7 {
		cost, err := Cost(3, big.NewInt(p))
		require.NoError(t, err)
		assert.True(t, cost.Cmp(prev) >= 0)
		prev = cost
	}

	// and with weight, above the fixed-point unit
	prev = big.NewInt(-1)
	for w := uint64(2); w <= 1000; w *= 3 {
		cost, err := Cost(w, big.NewInt(1000))
		require.NoError(t, err)
		assert.True(t, cost.Cmp(prev) > 0)
		prev = cost
	}
}

func TestCostErrors(t *testing.T) {
	_, err := Cost(0, big.NewInt(5))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = Cost(2, big.NewInt(-5))
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = Cost(2, nil)
	assert.ErrorIs(t, err, ErrInvalidPriority)

	// 256-bit overflow is rejected, never wrapped
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err = Cost(1<<40, huge)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestPriorityFromStake(t *testing.T) {
	_, err := PriorityFromStake(0, big.NewInt(19))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	// weight one has a zero logarithm and thus no inverse
	_, err = PriorityFromStake(1, big.NewInt(19))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = PriorityFromStake(2, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidStake)

	// approximate inverse: recovered priority never exceeds the original
	for _, p := range []int64{1, 5, 10, 97, 12345} {
		for _, w := range []uint64{2, 3, 10, 1000} {
			cost, err := Cost(w, big.NewInt(p))
			require.NoError(t, err)
			back, err := PriorityFromStake(w, cost)
			require.NoError(t, err)
			assert.True(t, back.Cmp(big.NewInt(p)) <= 0, "w=%d p=%d back=%s", w, p, back)
			diff := new(big.Int).Sub(big.NewInt(p), back)
			assert.True(t, diff.Cmp(big.NewInt(2)) <= 0, "inverse drift too large: w=%d p=%d back=%s", w, p, back)
		}
	}
}

func TestLogBaseQ64(t *testing.T) {
	// log1.2(2) in Q64.64, computed from floor(2^64·log2(1.2))
	l, err := LogBaseQ64(2)
	require.NoError(t, err)
	assert.Equal(t, "70130536783715204486", l.Dec())

	// memoized value must not be aliased by callers
	l.Clear()
	l2, err := LogBaseQ64(2)
	require.NoError(t, err)
	assert.Equal(t, "70130536783715204486", l2.Dec())
}
