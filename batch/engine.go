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

package batch

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/batch/op"
	"github.com/WhiteAngel2/Token-BulkSender/crypto"
	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/fee"
	"github.com/WhiteAngel2/Token-BulkSender/ledger"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
	"github.com/WhiteAngel2/Token-BulkSender/util"
)

// MaxBatchSize is the hard cap on the number of recipients
// of one batch.
const MaxBatchSize = 255

var (
	ErrInvalidBatchSize = errors.New("batch size out of range")
	ErrArityMismatch    = errors.New("recipients and amounts length mismatch")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrBatchNotExist    = errors.New("batch record not exist")
)

// Engine validates a batch request, prices it through the fee
// schedule and executes the per-recipient transfer loop. Native
// batches are best-effort, one uncooperative recipient must not
// block payment to all others. Token batches are atomic, a single
// failing allowance pull rolls the whole batch back. The engine is
// stateless across calls, each invocation is one synchronous unit
// of work.
type Engine struct {
	database db.Database
	bucket   string

	acm *account.Manager
	fs  *fee.Schedule
	lm  *ledger.Manager
}

func NewEngine(d db.Database, acm *account.Manager, fs *fee.Schedule, lm *ledger.Manager) *Engine {
	e := &Engine{
		database: d,
		bucket:   "BATCH",
		acm:      acm,
		fs:       fs,
		lm:       lm,
	}
	err := e.database.NewBucket(e.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", e.bucket, err)
	}
	return e
}

func validateSize(recipients []string) error {
	if len(recipients) < 1 || len(recipients) > MaxBatchSize {
		return ErrInvalidBatchSize
	}
	return nil
}

func sameAmounts(amount uint64, n int) []uint64 {
	amounts := make([]uint64, n)
	for i := range amounts {
		amounts[i] = amount
	}
	return amounts
}

// SendNative disburses per-recipient native amounts.
func (e *Engine) SendNative(caller string, recipients []string, amounts []uint64, payment uint64) (*types.BatchRecord, error) {
	if err := validateSize(recipients); err != nil {
		return nil, err
	}
	if len(amounts) != len(recipients) {
		return nil, ErrArityMismatch
	}
	total, err := util.SumUint64(amounts)
	if err != nil {
		return nil, err
	}
	return e.sendNative(caller, recipients, amounts, total, payment)
}

// SendNativeSame disburses the same native amount to every recipient.
func (e *Engine) SendNativeSame(caller string, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	if err := validateSize(recipients); err != nil {
		return nil, err
	}
	total, err := util.MulUint64(amount, uint64(len(recipients)))
	if err != nil {
		return nil, err
	}
	return e.sendNative(caller, recipients, sameAmounts(amount, len(recipients)), total, payment)
}

func (e *Engine) sendNative(caller string, recipients []string, amounts []uint64, total uint64, payment uint64) (*types.BatchRecord, error) {
	native := types.NativeAsset()

	required, err := e.fs.RequiredPayment(caller, native, total)
	if err != nil {
		return nil, err
	}
	if payment < required {
		return nil, fee.ErrInsufficientPayment
	}
	surcharge := e.fs.Surcharge(caller)

	// Escrow the full payment from the caller and pool the fee.
	// These effects commit before any recipient is credited so a
	// transfer can never observe stale administrative state.
	dt, err := e.database.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin db tx failed: %v", err)
	}
	acc, err := e.acm.GetAccount(dt, caller)
	if err != nil {
		dt.Rollback()
		return nil, err
	}
	if err := e.acm.SubBalance(acc, payment); err != nil {
		dt.Rollback()
		return nil, err
	}
	if err := e.acm.SaveAccount(dt, acc); err != nil {
		dt.Rollback()
		return nil, err
	}
	if err := e.lm.Credit(dt, native, surcharge); err != nil {
		dt.Rollback()
		return nil, err
	}
	if err := dt.Commit(); err != nil {
		return nil, fmt.Errorf("commit db tx failed: %v", err)
	}

	record := &types.BatchRecord{
		Caller: caller,
		Asset:  native,
		Total:  total,
		Fee:    surcharge,
	}

	// Best-effort transfer loop in request order, every recipient
	// from the first to the last is attempted exactly once.
	var disbursed uint64
	for i, recipient := range recipients {
		result := &types.SendResult{Recipient: recipient, Amount: amounts[i]}

		tdt, err := e.database.Begin()
		if err != nil {
			return nil, fmt.Errorf("begin db tx failed: %v", err)
		}
		transfer := &op.NativeTransfer{AM: e.acm, Recipient: recipient, Amount: amounts[i]}
		if err := transfer.Apply(tdt); err != nil {
			tdt.Rollback()
			result.Err = err.Error()
			log.Warnw("native transfer failed", "caller", caller, "recipient", recipient, "err", err)
		} else if err := tdt.Commit(); err != nil {
			result.Err = err.Error()
		} else {
			disbursed += amounts[i]
		}

		record.Results = append(record.Results, result)
	}

	// Refund the unspent escrow: amounts of failed recipients plus
	// any payment excess beyond the requirement.
	refund := payment - surcharge - disbursed
	if refund > 0 {
		if err := e.refund(caller, refund); err != nil {
			return nil, err
		}
	}
	record.Refund = refund

	if err := e.saveRecord(record); err != nil {
		return nil, err
	}

	return record, nil
}

// SendToken disburses per-recipient amounts of an issued token from
// the caller's pre-authorized allowance.
func (e *Engine) SendToken(caller string, asset *types.Asset, recipients []string, amounts []uint64, payment uint64) (*types.BatchRecord, error) {
	if err := validateSize(recipients); err != nil {
		return nil, err
	}
	if len(amounts) != len(recipients) {
		return nil, ErrArityMismatch
	}
	total, err := util.SumUint64(amounts)
	if err != nil {
		return nil, err
	}
	return e.sendToken(caller, asset, recipients, amounts, total, payment)
}

// SendTokenSame disburses the same token amount to every recipient.
func (e *Engine) SendTokenSame(caller string, asset *types.Asset, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	if err := validateSize(recipients); err != nil {
		return nil, err
	}
	total, err := util.MulUint64(amount, uint64(len(recipients)))
	if err != nil {
		return nil, err
	}
	return e.sendToken(caller, asset, recipients, sameAmounts(amount, len(recipients)), total, payment)
}

func (e *Engine) sendToken(caller string, asset *types.Asset, recipients []string, amounts []uint64, total uint64, payment uint64) (*types.BatchRecord, error) {
	if err := op.ValidateAsset(asset); err != nil {
		return nil, err
	}
	if asset.AssetType != types.AssetTypeToken {
		return nil, op.ErrInvalidAsset
	}

	required, err := e.fs.RequiredPayment(caller, asset, total)
	if err != nil {
		return nil, err
	}
	if payment < required {
		return nil, fee.ErrInsufficientPayment
	}

	// One shared transaction: the fee draw and every allowance pull
	// commit together or not at all.
	dt, err := e.database.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin db tx failed: %v", err)
	}

	if required > 0 {
		acc, err := e.acm.GetAccount(dt, caller)
		if err != nil {
			dt.Rollback()
			return nil, err
		}
		if err := e.acm.SubBalance(acc, required); err != nil {
			dt.Rollback()
			return nil, err
		}
		if err := e.acm.SaveAccount(dt, acc); err != nil {
			dt.Rollback()
			return nil, err
		}
		if err := e.lm.Credit(dt, types.NativeAsset(), required); err != nil {
			dt.Rollback()
			return nil, err
		}
	}

	record := &types.BatchRecord{
		Caller: caller,
		Asset:  asset,
		Total:  total,
		Fee:    required,
		Refund: payment - required,
	}

	for i, recipient := range recipients {
		transfer := &op.AllowanceTransfer{
			AM:        e.acm,
			Caller:    caller,
			Recipient: recipient,
			Asset:     asset,
			Amount:    amounts[i],
		}
		if err := transfer.Apply(dt); err != nil {
			dt.Rollback()
			return nil, fmt.Errorf("%w: recipient %s: %v", ErrTransferFailed, recipient, err)
		}
		record.Results = append(record.Results, &types.SendResult{Recipient: recipient, Amount: amounts[i]})
	}

	if err := dt.Commit(); err != nil {
		return nil, fmt.Errorf("commit db tx failed: %v", err)
	}

	if err := e.saveRecord(record); err != nil {
		return nil, err
	}

	return record, nil
}

// refund credits unspent escrow back to the caller.
func (e *Engine) refund(caller string, amount uint64) error {
	dt, err := e.database.Begin()
	if err != nil {
		return fmt.Errorf("begin db tx failed: %v", err)
	}
	acc, err := e.acm.GetAccount(dt, caller)
	if err != nil {
		dt.Rollback()
		return err
	}
	if err := e.acm.AddBalance(acc, amount); err != nil {
		dt.Rollback()
		return err
	}
	if err := e.acm.SaveAccount(dt, acc); err != nil {
		dt.Rollback()
		return err
	}
	if err := dt.Commit(); err != nil {
		return fmt.Errorf("commit db tx failed: %v", err)
	}
	return nil
}

// saveRecord persists the batch summary record under an ID derived
// from the record content.
func (e *Engine) saveRecord(record *types.BatchRecord) error {
	record.Timestamp = time.Now().Unix()

	cb, err := types.Encode(record)
	if err != nil {
		return fmt.Errorf("encode batch record failed: %v", err)
	}
	batchID, err := crypto.GetBatchID(cb)
	if err != nil {
		return fmt.Errorf("derive batch ID failed: %v", err)
	}
	record.BatchID = batchID

	b, err := types.Encode(record)
	if err != nil {
		return fmt.Errorf("encode batch record failed: %v", err)
	}
	if err := e.database.Put(e.bucket, []byte(batchID), b); err != nil {
		return fmt.Errorf("save batch record in db failed: %v", err)
	}

	succeeded := 0
	for _, r := range record.Results {
		if r.OK() {
			succeeded++
		}
	}
	log.Infow("batch disbursed",
		"batch", batchID,
		"caller", record.Caller,
		"asset", record.Asset.Key(),
		"total", record.Total,
		"fee", record.Fee,
		"refund", record.Refund,
		"succeeded", succeeded,
		"failed", len(record.Results)-succeeded,
	)

	return nil
}

// GetRecord loads a persisted batch summary record.
func (e *Engine) GetRecord(batchID string) (*types.BatchRecord, error) {
	b, err := e.database.Get(e.bucket, []byte(batchID))
	if err != nil {
		return nil, fmt.Errorf("get batch record from db failed: %v", err)
	}
	if b == nil {
		return nil, ErrBatchNotExist
	}
	return types.DecodeBatchRecord(b)
}

// Records loads every persisted batch summary record ordered by
// disbursement time.
func (e *Engine) Records() ([]*types.BatchRecord, error) {
	bs, err := e.database.GetAll(e.bucket, []byte{})
	if err != nil {
		return nil, fmt.Errorf("get batch records from db failed: %v", err)
	}

	var records []*types.BatchRecord
	for _, b := range bs {
		record, err := types.DecodeBatchRecord(b)
		if err != nil {
			return nil, fmt.Errorf("decode batch record failed: %v", err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	return records, nil
}
