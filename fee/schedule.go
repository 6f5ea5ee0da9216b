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

package fee

import (
	"errors"
	"fmt"

	"github.com/WhiteAngel2/Token-BulkSender/access"
	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/ledger"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
	"github.com/WhiteAngel2/Token-BulkSender/util"
)

var (
	ErrInsufficientPayment = errors.New("supplied payment is insufficient")
)

var tableKey = []byte("table")

// Schedule computes the payment a caller must supply for a batch
// and manages the owner-configured fee scalars.
type Schedule struct {
	database db.Database
	bucket   string

	am  *access.Manager
	acm *account.Manager
	lm  *ledger.Manager

	table *types.FeeTable
}

// Defaults used when the schedule has never been configured.
type Defaults struct {
	StandardFee      uint64
	PrivilegedFee    uint64
	RegistrationCost uint64
}

func NewSchedule(d db.Database, am *access.Manager, acm *account.Manager, lm *ledger.Manager, defaults Defaults) *Schedule {
	s := &Schedule{
		database: d,
		bucket:   "FEE",
		am:       am,
		acm:      acm,
		lm:       lm,
	}
	err := s.database.NewBucket(s.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", s.bucket, err)
	}

	b, err := s.database.Get(s.bucket, tableKey)
	if err != nil {
		log.Fatalf("load fee table failed: %v", err)
	}
	if b != nil {
		table, err := types.DecodeFeeTable(b)
		if err != nil {
			log.Fatalf("decode fee table failed: %v", err)
		}
		s.table = table
	} else {
		s.table = &types.FeeTable{
			StandardFee:      defaults.StandardFee,
			PrivilegedFee:    defaults.PrivilegedFee,
			RegistrationCost: defaults.RegistrationCost,
		}
		if err := s.persist(s.table); err != nil {
			log.Fatalf("save initial fee table failed: %v", err)
		}
	}

	return s
}

// RequiredPayment computes the native payment the caller must supply
// for disbursing the requested total of the asset. For the native
// asset the payment carries the disbursed value itself plus the
// surcharge, for tokens only the surcharge, the token value is
// pulled separately from the allowance.
func (s *Schedule) RequiredPayment(caller string, asset *types.Asset, total uint64) (uint64, error) {
	surcharge := s.table.StandardFee
	if s.am.IsPrivileged(caller) {
		surcharge = s.table.PrivilegedFee
	}

	if asset.AssetType == types.AssetTypeNative {
		required, err := util.AddUint64(total, surcharge)
		if err != nil {
			return 0, err
		}
		return required, nil
	}

	return surcharge, nil
}

// Surcharge returns the fee part of the required payment for the caller.
func (s *Schedule) Surcharge(caller string) uint64 {
	if s.am.IsPrivileged(caller) {
		return s.table.PrivilegedFee
	}
	return s.table.StandardFee
}

func (s *Schedule) StandardFee() uint64 {
	return s.table.StandardFee
}

func (s *Schedule) PrivilegedFee() uint64 {
	return s.table.PrivilegedFee
}

func (s *Schedule) RegistrationCost() uint64 {
	return s.table.RegistrationCost
}

// SetStandardFee updates the surcharge paid by standard accounts.
// Owner only, no upper bound beyond the arithmetic guard.
func (s *Schedule) SetStandardFee(caller string, amount uint64) error {
	if !s.am.IsOwner(caller) {
		return access.ErrUnauthorized
	}
	staged := *s.table
	staged.StandardFee = amount
	return s.save(&staged)
}

// SetPrivilegedFee updates the surcharge paid by privileged accounts.
// Owner only.
func (s *Schedule) SetPrivilegedFee(caller string, amount uint64) error {
	if !s.am.IsOwner(caller) {
		return access.ErrUnauthorized
	}
	staged := *s.table
	staged.PrivilegedFee = amount
	return s.save(&staged)
}

// SetRegistrationCost updates the self-service registration payment.
// Owner only.
func (s *Schedule) SetRegistrationCost(caller string, amount uint64) error {
	if !s.am.IsOwner(caller) {
		return access.ErrUnauthorized
	}
	staged := *s.table
	staged.RegistrationCost = amount
	return s.save(&staged)
}

// save persists the staged table and installs it in memory only
// after the write succeeds.
func (s *Schedule) save(staged *types.FeeTable) error {
	if err := s.persist(staged); err != nil {
		return err
	}
	s.table = staged
	return nil
}

// RegisterPrivileged is the self-service path into the privileged
// registry, open to any caller who supplies at least the configured
// registration cost. The cost is drawn from the caller's native
// balance and credited to the custodial pool.
func (s *Schedule) RegisterPrivileged(caller string, payment uint64) error {
	cost := s.table.RegistrationCost
	if payment < cost {
		return ErrInsufficientPayment
	}

	dt, err := s.database.Begin()
	if err != nil {
		return fmt.Errorf("begin db tx failed: %v", err)
	}

	acc, err := s.acm.GetAccount(dt, caller)
	if err != nil {
		dt.Rollback()
		return err
	}
	if err := s.acm.SubBalance(acc, cost); err != nil {
		dt.Rollback()
		return err
	}
	if err := s.acm.SaveAccount(dt, acc); err != nil {
		dt.Rollback()
		return err
	}
	if err := s.lm.Credit(dt, types.NativeAsset(), cost); err != nil {
		dt.Rollback()
		return err
	}

	if err := dt.Commit(); err != nil {
		return fmt.Errorf("commit db tx failed: %v", err)
	}

	if err := s.am.Register(caller); err != nil {
		return err
	}

	log.Infow("privileged registration", "caller", caller, "cost", cost)

	return nil
}

func (s *Schedule) persist(table *types.FeeTable) error {
	b, err := types.Encode(table)
	if err != nil {
		return fmt.Errorf("encode fee table failed: %v", err)
	}
	err = s.database.Put(s.bucket, tableKey, b)
	if err != nil {
		return fmt.Errorf("save fee table in db failed: %v", err)
	}
	return nil
}
