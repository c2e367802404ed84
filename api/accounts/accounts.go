// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/priorq/api/utils"
	"github.com/vechain/priorq/ledger"
	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/registry"
)

// Accounts exposes registration, balances and transfers over REST.
type Accounts struct {
	registry *registry.Registry
	now      func() uint64
}

// New creates the accounts endpoint group. now samples the operation time,
// once per request.
func New(reg *registry.Registry, now func() uint64) *Accounts {
	return &Accounts{
		registry: reg,
		now:      now,
	}
}

func convertError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAlreadyRegistered):
		return utils.Conflict(err)
	case errors.Is(err, ledger.ErrUnregistered),
		errors.Is(err, ledger.ErrUnregisteredSender),
		errors.Is(err, ledger.ErrUnregisteredRecipient),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrTimeTravel):
		return utils.BadRequest(err)
	default:
		return err
	}
}

func (a *Accounts) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body RegisterRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.registry.Register(body.Address, a.now()); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"registered": true})
}

func (a *Accounts) handleGetAccounts(w http.ResponseWriter, _ *http.Request) error {
	accounts, err := a.registry.ListRegisteredAccounts()
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []priorq.Address{}
	}
	return utils.WriteJSON(w, accounts)
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := priorq.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	now := a.now()

	registered, err := a.registry.IsRegistered(addr)
	if err != nil {
		return err
	}
	regular, err := a.registry.RegularBalance(addr, now)
	if err != nil {
		return convertError(err)
	}
	restricted, err := a.registry.RestrictedBalance(addr, now)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, &Account{
		Address:    addr,
		Registered: registered,
		Regular:    (*math.HexOrDecimal256)(regular),
		Restricted: (*math.HexOrDecimal256)(restricted),
		Timestamp:  now,
	})
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	from, err := priorq.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: missing"))
	}
	if err := a.registry.Transfer(from, body.To, (*big.Int)(body.Amount), a.now()); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"transferred": true})
}

// Mount attaches the endpoint group under pathPrefix.
func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /accounts").
		HandlerFunc(utils.WrapHandlerFunc(a.handleRegister))
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /accounts").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccounts))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/transfers").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/transfers").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
}
