// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
)

func newTestLedger() *Ledger {
	return New(priorq.BytesToAddress([]byte("ledger")), state.New())
}

func TestRegister(t *testing.T) {
	l := newTestLedger()
	acc := priorq.BytesToAddress([]byte("a1"))

	registered, err := l.IsRegistered(acc)
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, l.Register(acc, 1000))

	registered, err = l.IsRegistered(acc)
	require.NoError(t, err)
	assert.True(t, registered)

	assert.ErrorIs(t, l.Register(acc, 2000), ErrAlreadyRegistered)

	accounts, err := l.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []priorq.Address{acc}, accounts)
}

func TestAccrual(t *testing.T) {
	l := newTestLedger()
	acc := priorq.BytesToAddress([]byte("a1"))

	require.NoError(t, l.Register(acc, 0))

	// 10 s interval, 10 regular and 5 restricted per interval:
	// after exactly 100 s the live balances are 100 and 50.
	regular, err := l.RegularBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), regular)

	restricted, err := l.RestrictedBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), restricted)

	// views are idempotent and mutate nothing
	again, err := l.RegularBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, regular, again)

	// checkpointing settles the same values
	require.NoError(t, l.Checkpoint(acc, 100))
	settled, err := l.GetAccount(acc)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), settled.Regular)
	assert.Equal(t, big.NewInt(50), settled.Restricted)
	assert.Equal(t, uint64(100), settled.LastCheckpoint)
}

func TestAccrualUnregistered(t *testing.T) {
	l := newTestLedger()
	acc := priorq.BytesToAddress([]byte("nobody"))

	regular, err := l.RegularBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, regular.Sign())

	// checkpoint of an unregistered account is a no-op
	require.NoError(t, l.Checkpoint(acc, 100))
}

func TestCheckpointTimeTravel(t *testing.T) {
	l := newTestLedger()
	acc := priorq.BytesToAddress([]byte("a1"))

	require.NoError(t, l.Register(acc, 1000))
	assert.ErrorIs(t, l.Checkpoint(acc, 999), ErrTimeTravel)

	_, err := l.RegularBalance(acc, 999)
	assert.ErrorIs(t, err, ErrTimeTravel)
}

func TestTransferRestrictedPropagates(t *testing.T) {
	l := newTestLedger()
	a := priorq.BytesToAddress([]byte("a"))
	b := priorq.BytesToAddress([]byte("b"))

	require.NoError(t, l.Register(a, 0))
	require.NoError(t, l.Register(b, 0))

	// shape A's balances to restricted=50, regular=100
	require.NoError(t, l.Checkpoint(a, 100)) // regular 100, restricted 50

	require.NoError(t, l.Transfer(a, b, big.NewInt(30), 100))

	aRestricted, err := l.RestrictedBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), aRestricted)

	aRegular, err := l.RegularBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), aRegular)

	bRestricted, err := l.RestrictedBalance(b, 100)
	require.NoError(t, err)
	// B accrued 50 restricted itself, plus the 30 that kept its restriction
	assert.Equal(t, big.NewInt(80), bRestricted)
}

func TestTransferSpendsRegularAfterRestricted(t *testing.T) {
	l := newTestLedger()
	a := priorq.BytesToAddress([]byte("a"))
	b := priorq.BytesToAddress([]byte("b"))

	require.NoError(t, l.Register(a, 0))
	require.NoError(t, l.Register(b, 0))

	// at now=100: regular 100, restricted 50
	require.NoError(t, l.Transfer(a, b, big.NewInt(120), 100))

	aRestricted, err := l.RestrictedBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, aRestricted.Sign())

	aRegular, err := l.RegularBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), aRegular)
}

func TestTransferErrors(t *testing.T) {
	l := newTestLedger()
	a := priorq.BytesToAddress([]byte("a"))
	b := priorq.BytesToAddress([]byte("b"))
	nobody := priorq.BytesToAddress([]byte("nobody"))

	require.NoError(t, l.Register(a, 0))
	require.NoError(t, l.Register(b, 0))

	assert.ErrorIs(t, l.Transfer(nobody, b, big.NewInt(1), 10), ErrUnregisteredSender)
	assert.ErrorIs(t, l.Transfer(a, nobody, big.NewInt(1), 10), ErrUnregisteredRecipient)
	assert.ErrorIs(t, l.Transfer(a, b, big.NewInt(1_000_000), 10), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer(a, b, big.NewInt(-1), 10), ErrNegativeAmount)
}

func TestBurnAndMint(t *testing.T) {
	l := newTestLedger()
	acc := priorq.BytesToAddress([]byte("a"))

	require.NoError(t, l.Register(acc, 0))

	// regular 100 at now=100
	require.NoError(t, l.Burn(acc, big.NewInt(60), 100))
	regular, err := l.RegularBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40), regular)

	// burns never touch the restricted stream
	assert.ErrorIs(t, l.Burn(acc, big.NewInt(41), 100), ErrInsufficientBalance)

	require.NoError(t, l.Mint(acc, big.NewInt(60), 100))
	regular, err = l.RegularBalance(acc, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), regular)

	nobody := priorq.BytesToAddress([]byte("nobody"))
	assert.ErrorIs(t, l.Burn(nobody, big.NewInt(1), 100), ErrUnregistered)
	assert.ErrorIs(t, l.Mint(nobody, big.NewInt(1), 100), ErrUnregistered)
}

func TestSupplyClosure(t *testing.T) {
	l := newTestLedger()
	a := priorq.BytesToAddress([]byte("a"))
	b := priorq.BytesToAddress([]byte("b"))

	require.NoError(t, l.Register(a, 0))
	require.NoError(t, l.Register(b, 40))

	require.NoError(t, l.Checkpoint(a, 95))
	require.NoError(t, l.Transfer(a, b, big.NewInt(33), 100))
	require.NoError(t, l.Burn(a, big.NewInt(17), 120))
	require.NoError(t, l.Mint(b, big.NewInt(5), 130))

	// settle everything to one instant
	now := uint64(200)
	accounts, err := l.Accounts()
	require.NoError(t, err)

	sum := new(big.Int)
	for _, addr := range accounts {
		require.NoError(t, l.Checkpoint(addr, now))
		acc, err := l.GetAccount(addr)
		require.NoError(t, err)
		sum.Add(sum, acc.Regular)
		sum.Add(sum, acc.Restricted)
	}

	accruedTotal, err := l.TotalAccrued()
	require.NoError(t, err)
	minted, err := l.TotalMinted()
	require.NoError(t, err)
	burned, err := l.TotalBurned()
	require.NoError(t, err)

	expected := new(big.Int).Add(accruedTotal, minted)
	expected.Sub(expected, burned)
	assert.Equal(t, expected, sum, "settled balances must equal accrued+minted-burned")
}

func TestSelfTransfer(t *testing.T) {
	l := newTestLedger()
	a := priorq.BytesToAddress([]byte("a"))

	require.NoError(t, l.Register(a, 0))

	require.NoError(t, l.Transfer(a, a, big.NewInt(10), 100))

	regular, err := l.RegularBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), regular)

	restricted, err := l.RestrictedBalance(a, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), restricted)
}
