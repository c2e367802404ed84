// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/vechain/priorq/priorq"
)

// Account holds the settled balances of a participant. Balances accrue
// lazily: the settled values are only valid as of LastCheckpoint, and views
// add the pending accrual since then.
type Account struct {
	Registered     bool   // monotonic, never reverts to false
	RegisteredAt   uint64 // unix seconds of registration
	LastCheckpoint uint64 // non-decreasing

	Regular    *big.Int // freely transferable stream
	Restricted *big.Int // restriction propagates on transfer
}

// normalize fills nil balance fields so arithmetic never hits a nil big.Int.
func (a *Account) normalize() *Account {
	if a.Regular == nil {
		a.Regular = new(big.Int)
	}
	if a.Restricted == nil {
		a.Restricted = new(big.Int)
	}
	return a
}

// settle materializes accrual up to now into the settled balances and
// advances the checkpoint. It returns the total amount accrued.
func (a *Account) settle(now uint64) (*big.Int, error) {
	if now < a.LastCheckpoint {
		return nil, ErrTimeTravel
	}
	elapsed := now - a.LastCheckpoint
	a.LastCheckpoint = now
	if elapsed == 0 {
		return new(big.Int), nil
	}

	regular := accrued(elapsed, priorq.RegularRate)
	restricted := accrued(elapsed, priorq.RestrictedRate)
	a.Regular.Add(a.Regular, regular)
	a.Restricted.Add(a.Restricted, restricted)

	return regular.Add(regular, restricted), nil
}

// pendingRegular returns the regular accrual between LastCheckpoint and now
// without mutating the account.
func (a *Account) pendingRegular(now uint64) (*big.Int, error) {
	if now < a.LastCheckpoint {
		return nil, ErrTimeTravel
	}
	return accrued(now-a.LastCheckpoint, priorq.RegularRate), nil
}

// pendingRestricted returns the restricted accrual between LastCheckpoint
// and now without mutating the account.
func (a *Account) pendingRestricted(now uint64) (*big.Int, error) {
	if now < a.LastCheckpoint {
		return nil, ErrTimeTravel
	}
	return accrued(now-a.LastCheckpoint, priorq.RestrictedRate), nil
}

// accrued computes elapsed·rate/interval, multiplying before dividing to
// avoid truncation drift. Truncation is toward zero.
func accrued(elapsed, rate uint64) *big.Int {
	x := new(big.Int).SetUint64(elapsed)
	x.Mul(x, new(big.Int).SetUint64(rate))
	return x.Div(x, new(big.Int).SetUint64(priorq.AccrualInterval))
}
