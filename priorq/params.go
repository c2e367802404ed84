// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package priorq

// Constants of the participant registry.
const (
	// AccrualInterval is the number of seconds in one accrual interval.
	AccrualInterval uint64 = 10

	// RegularRate is the number of tokens accrued into the regular
	// balance per account per accrual interval.
	RegularRate uint64 = 10

	// RestrictedRate is the number of tokens accrued into the restricted
	// balance per account per accrual interval.
	RestrictedRate uint64 = 5

	// Log2PricingBaseQ64 is floor(2^64 * log2(1.2)), the binary logarithm
	// of the pricing base in Q64.64 fixed point. The stake required for a
	// queue slot is log1.2(weight) * priorityValue, truncated toward zero.
	Log2PricingBaseQ64 uint64 = 4852128366996249510
)
