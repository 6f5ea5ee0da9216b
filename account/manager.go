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

package account

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
	"github.com/WhiteAngel2/Token-BulkSender/util"
)

var (
	ErrAccountNotExist   = errors.New("account not exist")
	ErrAccountExist      = errors.New("account already exists")
	ErrBalanceOverflow   = errors.New("account balance overflow")
	ErrBalanceUnderflow  = errors.New("account balance underflow")
	ErrHoldingNotExist   = errors.New("token holding not exist")
	ErrHoldingLimit      = errors.New("token holding limit exceeded")
	ErrAllowanceNotExist = errors.New("token allowance not exist")
	ErrAllowanceExceeded = errors.New("token allowance exceeded")
)

// Manager manages the accounts, token holdings and allowances.
type Manager struct {
	database db.Database
	bucket   string

	// LRU cache for accounts
	accounts *lru.Cache
}

func NewManager(d db.Database, cacheSize int) *Manager {
	am := &Manager{
		database: d,
		bucket:   "ACCOUNT",
	}
	err := am.database.NewBucket(am.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", am.bucket, err)
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		log.Fatalf("create account manager LRU cache failed: %v", err)
	}
	am.accounts = cache
	return am
}

// Create a new account with initial balance.
func (am *Manager) CreateAccount(putter db.Putter, accountID string, balance uint64, signer string) error {
	b, err := am.database.Get(am.bucket, []byte(accountID))
	if err != nil {
		return fmt.Errorf("get account %s failed: %v", accountID, err)
	}
	if b != nil {
		return ErrAccountExist
	}

	acc := &types.Account{
		AccountID: accountID,
		Balance:   balance,
		Signer:    signer,
	}

	accb, err := types.Encode(acc)
	if err != nil {
		return fmt.Errorf("encode account failed: %v", err)
	}

	// save the account in db
	err = putter.Put(am.bucket, []byte(acc.AccountID), accb)
	if err != nil {
		return fmt.Errorf("save account in db failed: %v", err)
	}

	return nil
}

// Get account information from accountID.
func (am *Manager) GetAccount(getter db.Getter, accountID string) (*types.Account, error) {
	// first check the LRU cache, if the account is in the cache
	// we return a copy of the account
	if acc, ok := am.accounts.Get(accountID); ok {
		accCopy := *acc.(*types.Account)
		return &accCopy, nil
	}

	// then check database
	b, err := getter.Get(am.bucket, []byte(accountID))
	if err != nil {
		return nil, fmt.Errorf("get account %s failed: %v", accountID, err)
	}
	if b == nil {
		return nil, ErrAccountNotExist
	}
	acc, err := types.DecodeAccount(b)
	if err != nil {
		return nil, fmt.Errorf("account %s decode failed: %v", accountID, err)
	}

	// cache the account
	am.accounts.Add(accountID, acc)

	accCopy := *acc
	return &accCopy, nil
}

// Update account information. The cache entry is evicted rather
// than refreshed, the save may happen inside an uncommitted
// transaction which could still roll back.
func (am *Manager) SaveAccount(putter db.Putter, acc *types.Account) error {
	accb, err := types.Encode(acc)
	if err != nil {
		return fmt.Errorf("encode account failed: %v", err)
	}

	am.accounts.Remove(acc.AccountID)

	// update account in db
	err = putter.Put(am.bucket, []byte(acc.AccountID), accb)
	if err != nil {
		return fmt.Errorf("save account in db failed: %v", err)
	}

	return nil
}

// Add balance to account and check balance overflow.
func (am *Manager) AddBalance(acc *types.Account, balance uint64) error {
	b, err := util.AddUint64(acc.Balance, balance)
	if err != nil {
		return ErrBalanceOverflow
	}

	acc.Balance = b

	return nil
}

// Subtract balance from account and check balance underflow.
func (am *Manager) SubBalance(acc *types.Account, balance uint64) error {
	if acc.Balance < balance {
		return ErrBalanceUnderflow
	}

	acc.Balance -= balance

	return nil
}

func holdingKey(accountID string, asset *types.Asset) []byte {
	return []byte(accountID + ":holding:" + asset.Key())
}

func allowanceKey(accountID string, asset *types.Asset) []byte {
	return []byte(accountID + ":allowance:" + asset.Key())
}

// Create a new token holding for the issued asset.
func (am *Manager) CreateHolding(putter db.Putter, accountID string, asset *types.Asset, limit uint64) error {
	// the issuer implicitly holds its own asset
	if accountID == asset.Issuer {
		return nil
	}

	holding := &types.Holding{
		AccountID: accountID,
		Asset:     asset,
		Balance:   0,
		Limit:     limit,
	}

	hb, err := types.Encode(holding)
	if err != nil {
		return fmt.Errorf("encode holding failed: %v", err)
	}

	err = putter.Put(am.bucket, holdingKey(accountID, asset), hb)
	if err != nil {
		return fmt.Errorf("save holding in db failed: %v", err)
	}

	return nil
}

// Get token holding information.
func (am *Manager) GetHolding(getter db.Getter, accountID string, asset *types.Asset) (*types.Holding, error) {
	if accountID == asset.Issuer {
		h := &types.Holding{
			AccountID: accountID,
			Asset:     asset,
			Balance:   math.MaxUint64,
			Limit:     math.MaxUint64,
		}
		return h, nil
	}

	b, err := getter.Get(am.bucket, holdingKey(accountID, asset))
	if err != nil {
		return nil, fmt.Errorf("get holding from db failed: %v", err)
	}
	if b == nil {
		return nil, ErrHoldingNotExist
	}

	holding, err := types.DecodeHolding(b)
	if err != nil {
		return nil, fmt.Errorf("decode holding failed: %v", err)
	}

	return holding, nil
}

// Update token holding information.
func (am *Manager) SaveHolding(putter db.Putter, holding *types.Holding) error {
	hb, err := types.Encode(holding)
	if err != nil {
		return fmt.Errorf("encode holding failed: %v", err)
	}

	err = putter.Put(am.bucket, holdingKey(holding.AccountID, holding.Asset), hb)
	if err != nil {
		return fmt.Errorf("save holding in db failed: %v", err)
	}

	return nil
}

// Add balance to the token holding with limit and overflow checking.
func (am *Manager) AddHoldingBalance(holding *types.Holding, balance uint64) error {
	b, err := util.AddUint64(holding.Balance, balance)
	if err != nil {
		return ErrBalanceOverflow
	}
	if b > holding.Limit {
		return ErrHoldingLimit
	}

	holding.Balance = b

	return nil
}

// Subtract balance from the token holding with underflow checking.
func (am *Manager) SubHoldingBalance(holding *types.Holding, balance uint64) error {
	if holding.Balance < balance {
		return ErrBalanceUnderflow
	}

	holding.Balance -= balance

	return nil
}

// Approve sets the remaining allowance the disbursement engine may
// pull from the account for the asset. Re-approving overwrites the
// previous remaining amount.
func (am *Manager) Approve(putter db.Putter, accountID string, asset *types.Asset, amount uint64) error {
	al := &types.Allowance{
		AccountID: accountID,
		Asset:     asset,
		Remaining: amount,
	}

	alb, err := types.Encode(al)
	if err != nil {
		return fmt.Errorf("encode allowance failed: %v", err)
	}

	err = putter.Put(am.bucket, allowanceKey(accountID, asset), alb)
	if err != nil {
		return fmt.Errorf("save allowance in db failed: %v", err)
	}

	return nil
}

// Get allowance information.
func (am *Manager) GetAllowance(getter db.Getter, accountID string, asset *types.Asset) (*types.Allowance, error) {
	b, err := getter.Get(am.bucket, allowanceKey(accountID, asset))
	if err != nil {
		return nil, fmt.Errorf("get allowance from db failed: %v", err)
	}
	if b == nil {
		return nil, ErrAllowanceNotExist
	}

	al, err := types.DecodeAllowance(b)
	if err != nil {
		return nil, fmt.Errorf("decode allowance failed: %v", err)
	}

	return al, nil
}

// Update allowance information.
func (am *Manager) SaveAllowance(putter db.Putter, al *types.Allowance) error {
	alb, err := types.Encode(al)
	if err != nil {
		return fmt.Errorf("encode allowance failed: %v", err)
	}

	err = putter.Put(am.bucket, allowanceKey(al.AccountID, al.Asset), alb)
	if err != nil {
		return fmt.Errorf("save allowance in db failed: %v", err)
	}

	return nil
}

// Consume part of the remaining allowance.
func (am *Manager) SubAllowance(al *types.Allowance, amount uint64) error {
	if al.Remaining < amount {
		return ErrAllowanceExceeded
	}

	al.Remaining -= amount

	return nil
}
