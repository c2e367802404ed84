// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/state"
)

// Context binds typed storage cells to a namespace address within the state.
type Context struct {
	address priorq.Address
	state   *state.State
}

// NewContext creates a storage context for the given namespace address.
func NewContext(address priorq.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// Address returns the namespace address.
func (c *Context) Address() priorq.Address {
	return c.address
}
