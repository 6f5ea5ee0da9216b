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
)

// NativeTransfer credits a single recipient with native currency
// that was already escrowed from the caller. The engine applies
// each native transfer in its own transaction, a failing recipient
// must not abort the rest of the batch.
type NativeTransfer struct {
	AM        *account.Manager
	Recipient string
	Amount    uint64
}

func (t *NativeTransfer) Apply(dt db.Tx) error {
	if t.Recipient == "" {
		return ErrInvalidAccountID
	}

	acc, err := t.AM.GetAccount(dt, t.Recipient)
	if err != nil {
		return err
	}

	if err := t.AM.AddBalance(acc, t.Amount); err != nil {
		return err
	}

	if err := t.AM.SaveAccount(dt, acc); err != nil {
		return err
	}

	return nil
}
