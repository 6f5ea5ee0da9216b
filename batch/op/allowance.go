// Copyright 2021 The Token-BulkSender Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package op

import (
	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

// AllowanceTransfer pulls the amount of an issued token from the
// caller's pre-authorized allowance into the recipient's custody
// line. The engine applies every pull of a batch through one shared
// transaction, a single failure rolls the whole batch back.
type AllowanceTransfer struct {
	AM        *account.Manager
	Caller    string
	Recipient string
	Asset     *types.Asset
	Amount    uint64
}

func (t *AllowanceTransfer) Apply(dt db.Tx) error {
	if err := ValidateAsset(t.Asset); err != nil {
		return err
	}
	if t.Caller == "" || t.Recipient == "" {
		return ErrInvalidAccountID
	}

	// consume the allowance
	al, err := t.AM.GetAllowance(dt, t.Caller, t.Asset)
	if err != nil {
		return err
	}
	if err := t.AM.SubAllowance(al, t.Amount); err != nil {
		return err
	}
	if err := t.AM.SaveAllowance(dt, al); err != nil {
		return err
	}

	// move the token balance from the caller's custody line,
	// the issuer's synthetic line is never persisted
	src, err := t.AM.GetHolding(dt, t.Caller, t.Asset)
	if err != nil {
		return err
	}
	if err := t.AM.SubHoldingBalance(src, t.Amount); err != nil {
		return err
	}
	if t.Caller != t.Asset.Issuer {
		if err := t.AM.SaveHolding(dt, src); err != nil {
			return err
		}
	}

	dst, err := t.AM.GetHolding(dt, t.Recipient, t.Asset)
	if err != nil {
		return err
	}
	if err := t.AM.AddHoldingBalance(dst, t.Amount); err != nil {
		return err
	}
	if t.Recipient != t.Asset.Issuer {
		if err := t.AM.SaveHolding(dt, dst); err != nil {
			return err
		}
	}

	return nil
}
