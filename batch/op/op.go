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
	"errors"

	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

// Op is the interface with which the per-recipient transfer
// operations comply. An operation is applied through a database
// transaction so the caller decides whether it commits alone
// (best-effort) or together with the rest of the batch (atomic).
type Op interface {
	Apply(dt db.Tx) error
}

var (
	ErrInvalidAsset     = errors.New("invalid asset")
	ErrInvalidAccountID = errors.New("invalid accountID")
)

// ValidateAsset checks the shape of the asset identity.
func ValidateAsset(asset *types.Asset) error {
	if asset == nil {
		return ErrInvalidAsset
	}
	if asset.AssetType == types.AssetTypeNative {
		return nil
	}
	if len(asset.AssetName) <= 0 || len(asset.AssetName) >= 4 {
		return ErrInvalidAsset
	}
	if asset.Issuer == "" {
		return ErrInvalidAsset
	}
	return nil
}
