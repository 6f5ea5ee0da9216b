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

package ledger

import (
	"fmt"
	"math"

	"github.com/WhiteAngel2/Token-BulkSender/access"
	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
	"github.com/WhiteAngel2/Token-BulkSender/util"
)

// Manager is the custodial ledger which accumulates collected fees
// and any residual asset balance held by the system until the owner
// or the configured receiver withdraws it.
type Manager struct {
	database db.Database
	bucket   string

	am  *access.Manager
	acm *account.Manager
}

func NewManager(d db.Database, am *access.Manager, acm *account.Manager) *Manager {
	m := &Manager{
		database: d,
		bucket:   "POOL",
		am:       am,
		acm:      acm,
	}
	err := m.database.NewBucket(m.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	return m
}

// Credit accumulates the amount in the per-asset pool. The write
// goes through the supplied transaction so that a fee credit can
// commit or roll back together with the disbursement it belongs to.
func (m *Manager) Credit(dt db.Tx, asset *types.Asset, amount uint64) error {
	entry, err := m.getEntry(dt, asset)
	if err != nil {
		return err
	}

	b, err := util.AddUint64(entry.Balance, amount)
	if err != nil {
		return err
	}
	entry.Balance = b

	return m.saveEntry(dt, entry)
}

// Balance returns the accumulated pool balance for the asset.
func (m *Manager) Balance(asset *types.Asset) (uint64, error) {
	entry, err := m.getEntry(m.database, asset)
	if err != nil {
		return 0, err
	}
	return entry.Balance, nil
}

// Withdraw transfers the full pool balance of the asset to the
// caller and resets the pool to zero. Only the owner or the
// configured receiver may withdraw.
func (m *Manager) Withdraw(caller string, asset *types.Asset) (uint64, error) {
	if !m.am.IsOwner(caller) && caller != m.am.Receiver() {
		return 0, access.ErrUnauthorized
	}

	dt, err := m.database.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin db tx failed: %v", err)
	}

	amount, err := m.withdraw(dt, caller, asset)
	if err != nil {
		dt.Rollback()
		return 0, err
	}

	if err := dt.Commit(); err != nil {
		return 0, fmt.Errorf("commit db tx failed: %v", err)
	}

	log.Infow("pool withdrawn", "caller", caller, "asset", asset.Key(), "amount", amount)

	return amount, nil
}

func (m *Manager) withdraw(dt db.Tx, caller string, asset *types.Asset) (uint64, error) {
	entry, err := m.getEntry(dt, asset)
	if err != nil {
		return 0, err
	}
	amount := entry.Balance

	switch asset.AssetType {
	case types.AssetTypeNative:
		acc, err := m.acm.GetAccount(dt, caller)
		if err != nil {
			return 0, err
		}
		if err := m.acm.AddBalance(acc, amount); err != nil {
			return 0, err
		}
		if err := m.acm.SaveAccount(dt, acc); err != nil {
			return 0, err
		}
	default:
		// the issuer's custody line is synthetic and never
		// persisted, withdrawing its own token needs no credit
		if caller == asset.Issuer {
			break
		}
		holding, err := m.acm.GetHolding(dt, caller, asset)
		if err == account.ErrHoldingNotExist {
			// establish a custody line for the withdrawer
			if err := m.acm.CreateHolding(dt, caller, asset, math.MaxUint64); err != nil {
				return 0, err
			}
			holding, err = m.acm.GetHolding(dt, caller, asset)
			if err != nil {
				return 0, err
			}
		} else if err != nil {
			return 0, err
		}
		if err := m.acm.AddHoldingBalance(holding, amount); err != nil {
			return 0, err
		}
		if err := m.acm.SaveHolding(dt, holding); err != nil {
			return 0, err
		}
	}

	entry.Balance = 0
	if err := m.saveEntry(dt, entry); err != nil {
		return 0, err
	}

	return amount, nil
}

func (m *Manager) getEntry(getter db.Getter, asset *types.Asset) (*types.PoolEntry, error) {
	b, err := getter.Get(m.bucket, []byte(asset.Key()))
	if err != nil {
		return nil, fmt.Errorf("get pool entry from db failed: %v", err)
	}
	if b == nil {
		return &types.PoolEntry{Asset: asset, Balance: 0}, nil
	}
	return types.DecodePoolEntry(b)
}

func (m *Manager) saveEntry(putter db.Putter, entry *types.PoolEntry) error {
	b, err := types.Encode(entry)
	if err != nil {
		return fmt.Errorf("encode pool entry failed: %v", err)
	}
	err = putter.Put(m.bucket, []byte(entry.Asset.Key()), b)
	if err != nil {
		return fmt.Errorf("save pool entry in db failed: %v", err)
	}
	return nil
}
