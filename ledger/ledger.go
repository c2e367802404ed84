// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the per-account dual-balance ledger. Every
// registered account continuously accrues value into a regular and a
// restricted stream; accrual is computed lazily from elapsed time and
// materialized by checkpoints.
package ledger

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
	"github.com/vechain/priorq/storage"
)

var (
	// ErrAlreadyRegistered account is already registered.
	ErrAlreadyRegistered = errors.New("account already registered")
	// ErrUnregistered account is not registered.
	ErrUnregistered = errors.New("account not registered")
	// ErrUnregisteredSender transfer sender is not registered.
	ErrUnregisteredSender = errors.New("sender not registered")
	// ErrUnregisteredRecipient transfer recipient is not registered.
	ErrUnregisteredRecipient = errors.New("recipient not registered")
	// ErrInsufficientBalance balance does not cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrTimeTravel the supplied time precedes the account's checkpoint.
	ErrTimeTravel = errors.New("time precedes last checkpoint")
	// ErrNegativeAmount a negative amount was supplied.
	ErrNegativeAmount = errors.New("negative amount")
)

var (
	slotAccounts     = nameToSlot("accounts")
	slotAccountList  = nameToSlot("account-list")
	slotAccountCount = nameToSlot("account-count")
	slotTotalAccrued = nameToSlot("total-accrued")
	slotTotalMinted  = nameToSlot("total-minted")
	slotTotalBurned  = nameToSlot("total-burned")
)

func nameToSlot(name string) priorq.Bytes32 {
	return priorq.BytesToBytes32([]byte(name))
}

// listIndex keys the registration-ordered account list.
type listIndex uint64

func (i listIndex) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// Ledger maintains account balances in keyed storage.
type Ledger struct {
	accounts *storage.Mapping[priorq.Address, *Account]
	list     *storage.Mapping[listIndex, priorq.Address]
	count    *storage.Uint256

	// supply counters; see the closure invariant in ledger_test.go
	totalAccrued *storage.Uint256
	totalMinted  *storage.Uint256
	totalBurned  *storage.Uint256
}

// New creates a ledger bound to the given storage namespace.
func New(addr priorq.Address, st *state.State) *Ledger {
	context := storage.NewContext(addr, st)
	return &Ledger{
		accounts:     storage.NewMapping[priorq.Address, *Account](context, slotAccounts),
		list:         storage.NewMapping[listIndex, priorq.Address](context, slotAccountList),
		count:        storage.NewUint256(context, slotAccountCount),
		totalAccrued: storage.NewUint256(context, slotTotalAccrued),
		totalMinted:  storage.NewUint256(context, slotTotalMinted),
		totalBurned:  storage.NewUint256(context, slotTotalBurned),
	}
}

func (l *Ledger) getAccount(addr priorq.Address) (*Account, error) {
	acc, err := l.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	return acc.normalize(), nil
}

func (l *Ledger) setAccount(addr priorq.Address, acc *Account) error {
	if err := l.accounts.Set(addr, acc); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

// Register creates the account. The registered flag is monotonic: once set
// it never reverts, and registration of a registered account fails.
func (l *Ledger) Register(addr priorq.Address, now uint64) error {
	acc, err := l.getAccount(addr)
	if err != nil {
		return err
	}
	if acc.Registered {
		return ErrAlreadyRegistered
	}

	acc.Registered = true
	acc.RegisteredAt = now
	acc.LastCheckpoint = now
	if err := l.setAccount(addr, acc); err != nil {
		return err
	}

	count, err := l.count.Get()
	if err != nil {
		return err
	}
	if err := l.list.Set(listIndex(count.Uint64()), addr); err != nil {
		return err
	}
	return l.count.Add(big.NewInt(1))
}

// IsRegistered reports whether the account is registered.
func (l *Ledger) IsRegistered(addr priorq.Address) (bool, error) {
	acc, err := l.getAccount(addr)
	if err != nil {
		return false, err
	}
	return acc.Registered, nil
}

// GetAccount returns a copy of the account record.
func (l *Ledger) GetAccount(addr priorq.Address) (*Account, error) {
	return l.getAccount(addr)
}

// Checkpoint settles accrual up to now. It is a no-op for unregistered
// accounts. Accrued value is counted as issued supply.
func (l *Ledger) Checkpoint(addr priorq.Address, now uint64) error {
	acc, err := l.getAccount(addr)
	if err != nil {
		return err
	}
	if !acc.Registered {
		return nil
	}

	accrued, err := acc.settle(now)
	if err != nil {
		return err
	}
	if err := l.setAccount(addr, acc); err != nil {
		return err
	}
	return l.totalAccrued.Add(accrued)
}

// RegularBalance returns the live regular balance at now: the settled value
// plus the accrual since the last checkpoint. It never mutates state.
func (l *Ledger) RegularBalance(addr priorq.Address, now uint64) (*big.Int, error) {
	acc, err := l.getAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.Registered {
		return new(big.Int), nil
	}
	pending, err := acc.pendingRegular(now)
	if err != nil {
		return nil, err
	}
	return pending.Add(pending, acc.Regular), nil
}

// RestrictedBalance returns the live restricted balance at now. It never
// mutates state.
func (l *Ledger) RestrictedBalance(addr priorq.Address, now uint64) (*big.Int, error) {
	acc, err := l.getAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.Registered {
		return new(big.Int), nil
	}
	pending, err := acc.pendingRestricted(now)
	if err != nil {
		return nil, err
	}
	return pending.Add(pending, acc.Restricted), nil
}

// Transfer moves amount from one account to the other. The restricted
// portion of the amount keeps its restriction on the recipient side; it
// never silently converts to the regular stream.
func (l *Ledger) Transfer(from, to priorq.Address, amount *big.Int, now uint64) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	sender, err := l.getAccount(from)
	if err != nil {
		return err
	}
	if !sender.Registered {
		return ErrUnregisteredSender
	}
	recipient, err := l.getAccount(to)
	if err != nil {
		return err
	}
	if !recipient.Registered {
		return ErrUnregisteredRecipient
	}

	if err := l.Checkpoint(from, now); err != nil {
		return err
	}
	if err := l.Checkpoint(to, now); err != nil {
		return err
	}
	// reload settled values
	if sender, err = l.getAccount(from); err != nil {
		return err
	}
	if recipient, err = l.getAccount(to); err != nil {
		return err
	}

	total := new(big.Int).Add(sender.Regular, sender.Restricted)
	if total.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	if from == to {
		// both portions land where they came from
		return nil
	}

	restrictedPortion := new(big.Int).Set(amount)
	if restrictedPortion.Cmp(sender.Restricted) > 0 {
		restrictedPortion.Set(sender.Restricted)
	}
	regularPortion := new(big.Int).Sub(amount, restrictedPortion)

	sender.Restricted.Sub(sender.Restricted, restrictedPortion)
	sender.Regular.Sub(sender.Regular, regularPortion)
	recipient.Restricted.Add(recipient.Restricted, restrictedPortion)
	recipient.Regular.Add(recipient.Regular, regularPortion)

	if err := l.setAccount(from, sender); err != nil {
		return err
	}
	return l.setAccount(to, recipient)
}

// Burn destroys amount from the account's regular balance after settling it.
// Used to escrow queue stakes.
func (l *Ledger) Burn(addr priorq.Address, amount *big.Int, now uint64) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	acc, err := l.getAccount(addr)
	if err != nil {
		return err
	}
	if !acc.Registered {
		return ErrUnregistered
	}
	if err := l.Checkpoint(addr, now); err != nil {
		return err
	}
	if acc, err = l.getAccount(addr); err != nil {
		return err
	}

	if acc.Regular.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	acc.Regular.Sub(acc.Regular, amount)

	if err := l.setAccount(addr, acc); err != nil {
		return err
	}
	return l.totalBurned.Add(amount)
}

// Mint creates amount in the account's regular balance after settling it.
// Used to refund queue stakes.
func (l *Ledger) Mint(addr priorq.Address, amount *big.Int, now uint64) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	acc, err := l.getAccount(addr)
	if err != nil {
		return err
	}
	if !acc.Registered {
		return ErrUnregistered
	}
	if err := l.Checkpoint(addr, now); err != nil {
		return err
	}
	if acc, err = l.getAccount(addr); err != nil {
		return err
	}

	acc.Regular.Add(acc.Regular, amount)

	if err := l.setAccount(addr, acc); err != nil {
		return err
	}
	return l.totalMinted.Add(amount)
}

// Accounts returns all registered accounts in registration order.
func (l *Ledger) Accounts() ([]priorq.Address, error) {
	count, err := l.count.Get()
	if err != nil {
		return nil, err
	}
	n := count.Uint64()
	accounts := make([]priorq.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		addr, err := l.list.Get(listIndex(i))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

// TotalAccrued returns the total supply issued by accrual checkpoints.
func (l *Ledger) TotalAccrued() (*big.Int, error) { return l.totalAccrued.Get() }

// TotalMinted returns the total supply minted back by refunds.
func (l *Ledger) TotalMinted() (*big.Int, error) { return l.totalMinted.Get() }

// TotalBurned returns the total supply destroyed by burns.
func (l *Ledger) TotalBurned() (*big.Int, error) { return l.totalBurned.Get() }
