// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access holds the registry's role table: a single owner and a single
// controller, stored as address slots. Roles are explicit grants; no role
// implies another.
package access

import (
	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
	"github.com/vechain/priorq/storage"
)

var (
	slotOwner      = priorq.BytesToBytes32([]byte("owner"))
	slotController = priorq.BytesToBytes32([]byte("controller"))
)

// Gate answers role membership questions.
type Gate struct {
	owner      *storage.Address
	controller *storage.Address
}

// New creates a gate bound to the given storage namespace.
func New(addr priorq.Address, st *state.State) *Gate {
	context := storage.NewContext(addr, st)
	return &Gate{
		owner:      storage.NewAddress(context, slotOwner),
		controller: storage.NewAddress(context, slotController),
	}
}

// Owner returns the current owner address.
func (g *Gate) Owner() (priorq.Address, error) {
	return g.owner.Get()
}

// Controller returns the current controller address.
func (g *Gate) Controller() (priorq.Address, error) {
	return g.controller.Get()
}

// IsOwner reports whether addr holds the owner role.
func (g *Gate) IsOwner(addr priorq.Address) (bool, error) {
	owner, err := g.owner.Get()
	if err != nil {
		return false, err
	}
	return !owner.IsZero() && owner == addr, nil
}

// IsController reports whether addr holds the controller role.
func (g *Gate) IsController(addr priorq.Address) (bool, error) {
	controller, err := g.controller.Get()
	if err != nil {
		return false, err
	}
	return !controller.IsZero() && controller == addr, nil
}

// SetOwner writes the owner slot. Authorization is the caller's concern.
func (g *Gate) SetOwner(addr priorq.Address) error {
	return g.owner.Set(&addr)
}

// SetController writes the controller slot. Authorization is the caller's
// concern.
func (g *Gate) SetController(addr priorq.Address) error {
	return g.controller.Set(&addr)
}
