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

package node

import (
	"sync"
	"time"

	"github.com/wunderlist/ttlcache"

	"github.com/WhiteAngel2/Token-BulkSender/access"
	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/batch"
	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/db/boltdb"
	"github.com/WhiteAngel2/Token-BulkSender/fee"
	"github.com/WhiteAngel2/Token-BulkSender/ledger"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

// Retention of recently served batch reports.
const reportTTL = time.Hour

// Node is the central controller which wires the database, the
// administrative managers and the disbursement engine together and
// exposes the public call surface. Every state-mutating call runs
// as one synchronous unit of work, calls are serialized because the
// administrative state is a single shared mutable resource.
type Node struct {
	database db.Database

	config *Config

	am     *access.Manager
	acm    *account.Manager
	lm     *ledger.Manager
	fs     *fee.Schedule
	engine *batch.Engine

	// cache of recently disbursed batch reports
	reports *ttlcache.Cache

	// serializes state-mutating calls
	mu sync.Mutex

	// start time of the node
	startTime int64

	// channel for stopping the node
	stopChan chan struct{}
}

// NewNode creates a Node with all the subsystems initialized and the
// owner account bootstrapped.
func NewNode(conf *Config) *Node {
	database := boltdb.New(conf.DBPath)

	am := access.NewManager(database, conf.OwnerID)
	acm := account.NewManager(database, conf.AccountCacheSize)
	lm := ledger.NewManager(database, am, acm)
	fs := fee.NewSchedule(database, am, acm, lm, fee.Defaults{
		StandardFee:      conf.StandardFee,
		PrivilegedFee:    conf.PrivilegedFee,
		RegistrationCost: conf.RegistrationCost,
	})
	engine := batch.NewEngine(database, acm, fs, lm)

	// bootstrap the owner account on first start
	err := acm.CreateAccount(database, conf.OwnerID, conf.OwnerBalance, conf.OwnerID)
	if err != nil && err != account.ErrAccountExist {
		log.Fatalf("bootstrap owner account failed: %v", err)
	}

	n := &Node{
		database:  database,
		config:    conf,
		am:        am,
		acm:       acm,
		lm:        lm,
		fs:        fs,
		engine:    engine,
		reports:   ttlcache.NewCache(reportTTL),
		startTime: time.Now().Unix(),
		stopChan:  make(chan struct{}),
	}

	return n
}

// Start brings the node up and blocks until it is stopped.
func (n *Node) Start() {
	log.Infow("node started",
		"owner", n.config.OwnerID,
		"standard_fee", n.fs.StandardFee(),
		"privileged_fee", n.fs.PrivilegedFee(),
		"registration_cost", n.fs.RegistrationCost(),
	)
	<-n.stopChan
}

// Stop shuts the node down and closes the database.
func (n *Node) Stop() {
	close(n.stopChan)
	n.database.Close()
	log.Info("node stopped")
}

// CreateAccount creates a new account with an initial native
// balance. Owner only.
func (n *Node) CreateAccount(caller string, accountID string, balance uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.am.IsOwner(caller) {
		return access.ErrUnauthorized
	}
	return n.acm.CreateAccount(n.database, accountID, balance, accountID)
}

// AccountInfo returns the account state. Read-only.
func (n *Node) AccountInfo(accountID string) (*types.Account, error) {
	return n.acm.GetAccount(n.database, accountID)
}

// CreateHolding establishes a custody line of the asset for the
// caller with the supplied limit.
func (n *Node) CreateHolding(caller string, asset *types.Asset, limit uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.acm.CreateHolding(n.database, caller, asset, limit)
}

// Approve grants the disbursement engine an allowance to pull the
// caller's tokens.
func (n *Node) Approve(caller string, asset *types.Asset, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.acm.Approve(n.database, caller, asset, amount)
}

// RegisterPrivileged is the self-service entry to the privileged
// registry, open to any caller supplying the registration cost.
func (n *Node) RegisterPrivileged(caller string, payment uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.fs.RegisterPrivileged(caller, payment)
}

// GrantPrivilege adds the accounts to the privileged registry.
// Owner only.
func (n *Node) GrantPrivilege(caller string, accounts []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.am.GrantPrivilege(caller, accounts)
}

// RevokePrivilege removes the accounts from the privileged registry.
// Owner only.
func (n *Node) RevokePrivilege(caller string, accounts []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.am.RevokePrivilege(caller, accounts)
}

// IsPrivileged reports whether the account is exempt from the
// standard fee surcharge. Read-only.
func (n *Node) IsPrivileged(account string) bool {
	return n.am.IsPrivileged(account)
}

// SetStandardFee updates the standard surcharge. Owner only.
func (n *Node) SetStandardFee(caller string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.fs.SetStandardFee(caller, amount)
}

// SetPrivilegedFee updates the privileged surcharge. Owner only.
func (n *Node) SetPrivilegedFee(caller string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.fs.SetPrivilegedFee(caller, amount)
}

// SetRegistrationCost updates the self-service registration cost.
// Owner only.
func (n *Node) SetRegistrationCost(caller string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.fs.SetRegistrationCost(caller, amount)
}

// SetFeeReceiver redirects ledger withdrawals. Owner only.
func (n *Node) SetFeeReceiver(caller string, receiver string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.am.SetFeeReceiver(caller, receiver)
}

// SendNative disburses per-recipient native amounts, best-effort.
func (n *Node) SendNative(caller string, recipients []string, amounts []uint64, payment uint64) (*types.BatchRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	record, err := n.engine.SendNative(caller, recipients, amounts, payment)
	if err != nil {
		return nil, err
	}
	n.cacheReport(record)
	return record, nil
}

// SendNativeSame disburses the same native amount to every
// recipient, best-effort.
func (n *Node) SendNativeSame(caller string, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	record, err := n.engine.SendNativeSame(caller, recipients, amount, payment)
	if err != nil {
		return nil, err
	}
	n.cacheReport(record)
	return record, nil
}

// SendToken disburses per-recipient token amounts from the caller's
// allowance, all-or-nothing.
func (n *Node) SendToken(caller string, asset *types.Asset, recipients []string, amounts []uint64, payment uint64) (*types.BatchRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	record, err := n.engine.SendToken(caller, asset, recipients, amounts, payment)
	if err != nil {
		return nil, err
	}
	n.cacheReport(record)
	return record, nil
}

// SendTokenSame disburses the same token amount to every recipient,
// all-or-nothing.
func (n *Node) SendTokenSame(caller string, asset *types.Asset, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	record, err := n.engine.SendTokenSame(caller, asset, recipients, amount, payment)
	if err != nil {
		return nil, err
	}
	n.cacheReport(record)
	return record, nil
}

// BulkSendCoin is a legacy alias of SendNativeSame kept for callers
// of the historical surface.
func (n *Node) BulkSendCoin(caller string, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	return n.SendNativeSame(caller, recipients, amount, payment)
}

// BulkSendToken is a legacy alias of SendTokenSame kept for callers
// of the historical surface.
func (n *Node) BulkSendToken(caller string, asset *types.Asset, recipients []string, amount uint64, payment uint64) (*types.BatchRecord, error) {
	return n.SendTokenSame(caller, asset, recipients, amount, payment)
}

// Withdraw transfers the accumulated pool balance of the asset to
// the caller. Owner or configured receiver only.
func (n *Node) Withdraw(caller string, asset *types.Asset) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.lm.Withdraw(caller, asset)
}

// PoolBalance returns the accumulated pool balance of the asset.
// Read-only.
func (n *Node) PoolBalance(asset *types.Asset) (uint64, error) {
	return n.lm.Balance(asset)
}

// QueryBatches returns the summary records of every disbursed
// batch in disbursement order. Read-only.
func (n *Node) QueryBatches() ([]*types.BatchRecord, error) {
	return n.engine.Records()
}

// QueryBatch returns the summary record of a disbursed batch, served
// from the report cache when the batch is recent.
func (n *Node) QueryBatch(batchID string) (*types.BatchRecord, error) {
	if b, ok := n.reports.Get(batchID); ok {
		return types.DecodeBatchRecord([]byte(b))
	}
	return n.engine.GetRecord(batchID)
}

func (n *Node) cacheReport(record *types.BatchRecord) {
	b, err := types.Encode(record)
	if err != nil {
		log.Errorf("encode batch report for cache failed: %v", err)
		return
	}
	n.reports.Set(record.BatchID, string(b))
}
