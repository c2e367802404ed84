// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/priorq/priorq"
)

// RegisterRequest body of POST /accounts.
type RegisterRequest struct {
	Address priorq.Address `json:"address"`
}

// Account response of GET /accounts/{address}.
type Account struct {
	Address    priorq.Address        `json:"address"`
	Registered bool                  `json:"registered"`
	Regular    *math.HexOrDecimal256 `json:"regular"`
	Restricted *math.HexOrDecimal256 `json:"restricted"`
	Timestamp  uint64                `json:"timestamp"`
}

// TransferRequest body of POST /accounts/{address}/transfers.
type TransferRequest struct {
	To     priorq.Address        `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
