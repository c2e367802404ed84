// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package waitlist

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/priorq/api/utils"
	"github.com/vechain/priorq/ledger"
	"github.com/vechain/priorq/pricing"
	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/queue"
	"github.com/vechain/priorq/registry"
)

// WaitList exposes the stake queue and its admin operations over REST.
type WaitList struct {
	registry *registry.Registry
	now      func() uint64
}

// New creates the waitlist endpoint group. now samples the operation time,
// once per request.
func New(reg *registry.Registry, now func() uint64) *WaitList {
	return &WaitList{
		registry: reg,
		now:      now,
	}
}

func convertError(err error) error {
	switch {
	case errors.Is(err, queue.ErrNotInQueue):
		return utils.NotFound(err)
	case errors.Is(err, queue.ErrAlreadyQueued):
		return utils.Conflict(err)
	case errors.Is(err, queue.ErrQueueEmpty),
		errors.Is(err, registry.ErrUnregistered),
		errors.Is(err, pricing.ErrInvalidWeight),
		errors.Is(err, pricing.ErrInvalidPriority),
		errors.Is(err, pricing.ErrAmountOverflow),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return utils.BadRequest(err)
	case errors.Is(err, registry.ErrNotAuthorized), errors.Is(err, registry.ErrNotOwner):
		return utils.Forbidden(err)
	default:
		return err
	}
}

func (wl *WaitList) handleGetQueue(w http.ResponseWriter, _ *http.Request) error {
	items, err := wl.registry.QueueContents()
	if err != nil {
		return err
	}
	slots := make([]*Slot, 0, len(items))
	for i, item := range items {
		slots = append(slots, newSlot(item.ID, item.Entry, uint64(i)))
	}
	return utils.WriteJSON(w, slots)
}

func (wl *WaitList) handleEnter(w http.ResponseWriter, req *http.Request) error {
	var body EnterRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Priority == nil {
		return utils.BadRequest(errors.New("priority: missing"))
	}
	if err := wl.registry.EnterQueue(body.Caller, body.Weight, (*big.Int)(body.Priority), body.ID, wl.now()); err != nil {
		return convertError(err)
	}
	position, err := wl.registry.QueuePosition(body.ID)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"position": position})
}

func (wl *WaitList) handleGetSlot(w http.ResponseWriter, req *http.Request) error {
	id, err := priorq.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	items, err := wl.registry.QueueContents()
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.ID == id {
			return utils.WriteJSON(w, newSlot(item.ID, item.Entry, uint64(i)))
		}
	}
	return utils.NotFound(queue.ErrNotInQueue)
}

func (wl *WaitList) handleChange(w http.ResponseWriter, req *http.Request) error {
	id, err := priorq.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	var body ChangeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Priority == nil {
		return utils.BadRequest(errors.New("priority: missing"))
	}
	if err := wl.registry.ChangeStake(body.Caller, body.Weight, (*big.Int)(body.Priority), id, wl.now()); err != nil {
		return convertError(err)
	}
	position, err := wl.registry.QueuePosition(id)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"position": position})
}

func (wl *WaitList) handleRemove(w http.ResponseWriter, req *http.Request) error {
	id, err := priorq.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	caller, err := priorq.ParseAddress(req.URL.Query().Get("caller"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "caller"))
	}
	if err := wl.registry.RemoveStake(caller, id, wl.now()); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"removed": true})
}

func (wl *WaitList) handleDequeue(w http.ResponseWriter, req *http.Request) error {
	var body DequeueRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	id, entry, err := wl.registry.Dequeue(body.Caller, wl.now())
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, newSlot(id, entry, 0))
}

func (wl *WaitList) handleGetController(w http.ResponseWriter, _ *http.Request) error {
	controller, err := wl.registry.Controller()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"controller": controller})
}

func (wl *WaitList) handleSetController(w http.ResponseWriter, req *http.Request) error {
	var body ControllerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := wl.registry.SetController(body.Caller, body.Controller); err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"controller": body.Controller})
}

func (wl *WaitList) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	accrued, minted, burned, err := wl.registry.Supply()
	if err != nil {
		return err
	}
	staked, err := wl.registry.TotalStaked()
	if err != nil {
		return err
	}
	destroyed, err := wl.registry.Destroyed()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{
		Accrued:     (*math.HexOrDecimal256)(accrued),
		Minted:      (*math.HexOrDecimal256)(minted),
		Burned:      (*math.HexOrDecimal256)(burned),
		TotalStaked: (*math.HexOrDecimal256)(staked),
		Destroyed:   (*math.HexOrDecimal256)(destroyed),
	})
}

// Mount attaches the endpoint group under pathPrefix.
func (wl *WaitList) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /waitlist").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleGetQueue))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /waitlist").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleEnter))
	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("GET /waitlist/supply").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleGetSupply))
	sub.Path("/controller").
		Methods(http.MethodGet).
		Name("GET /waitlist/controller").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleGetController))
	sub.Path("/controller").
		Methods(http.MethodPut).
		Name("PUT /waitlist/controller").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleSetController))
	sub.Path("/dequeues").
		Methods(http.MethodPost).
		Name("POST /waitlist/dequeues").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleDequeue))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /waitlist/{id}").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleGetSlot))
	sub.Path("/{id}").
		Methods(http.MethodPut).
		Name("PUT /waitlist/{id}").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleChange))
	sub.Path("/{id}").
		Methods(http.MethodDelete).
		Name("DELETE /waitlist/{id}").
		HandlerFunc(utils.WrapHandlerFunc(wl.handleRemove))
}
