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

package access

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/WhiteAngel2/Token-BulkSender/db"
	"github.com/WhiteAngel2/Token-BulkSender/log"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

var (
	ErrUnauthorized = errors.New("caller is not authorized")
)

var stateKey = []byte("access")

// Manager guards the administrative state: the owner identity,
// the privileged account registry and the optional fee receiver
// redirect. There is exactly one owner and it never changes for
// the lifetime of the deployed system.
type Manager struct {
	database db.Database
	bucket   string

	owner    string
	receiver string

	// privileged account registry, mirrored in memory for
	// cheap membership checks
	privileged mapset.Set
}

func NewManager(d db.Database, owner string) *Manager {
	m := &Manager{
		database:   d,
		bucket:     "ACCESS",
		owner:      owner,
		privileged: mapset.NewSet(),
	}
	err := m.database.NewBucket(m.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}

	// load persisted registry and receiver
	b, err := m.database.Get(m.bucket, stateKey)
	if err != nil {
		log.Fatalf("load access state failed: %v", err)
	}
	if b != nil {
		state, err := types.DecodeAccessState(b)
		if err != nil {
			log.Fatalf("decode access state failed: %v", err)
		}
		m.receiver = state.Receiver
		for _, acc := range state.Privileged {
			m.privileged.Add(acc)
		}
	}

	return m
}

// Owner returns the owner account ID.
func (m *Manager) Owner() string {
	return m.owner
}

// IsOwner checks whether the caller is the owner.
func (m *Manager) IsOwner(caller string) bool {
	return caller == m.owner
}

// IsPrivileged checks whether the account is exempt from the
// standard fee surcharge. The owner is always privileged.
func (m *Manager) IsPrivileged(account string) bool {
	if account == m.owner {
		return true
	}
	return m.privileged.Contains(account)
}

// GrantPrivilege adds the accounts to the privileged registry,
// entries already present are no-ops. Owner only.
func (m *Manager) GrantPrivilege(caller string, accounts []string) error {
	if !m.IsOwner(caller) {
		return ErrUnauthorized
	}

	staged := m.privileged.Clone()
	for _, acc := range accounts {
		staged.Add(acc)
	}

	if err := m.persist(m.receiver, staged); err != nil {
		return err
	}
	m.privileged = staged

	return nil
}

// RevokePrivilege removes the accounts from the privileged registry,
// absent entries are no-ops. Owner only.
func (m *Manager) RevokePrivilege(caller string, accounts []string) error {
	if !m.IsOwner(caller) {
		return ErrUnauthorized
	}

	staged := m.privileged.Clone()
	for _, acc := range accounts {
		staged.Remove(acc)
	}

	if err := m.persist(m.receiver, staged); err != nil {
		return err
	}
	m.privileged = staged

	return nil
}

// Register adds a single account to the privileged registry without
// the owner gate. The self-service registration payment is checked
// by the fee schedule before it calls here.
func (m *Manager) Register(account string) error {
	staged := m.privileged.Clone()
	staged.Add(account)

	if err := m.persist(m.receiver, staged); err != nil {
		return err
	}
	m.privileged = staged

	return nil
}

// SetFeeReceiver redirects ledger withdrawals to the account.
// Owner only.
func (m *Manager) SetFeeReceiver(caller string, account string) error {
	if !m.IsOwner(caller) {
		return ErrUnauthorized
	}

	if err := m.persist(account, m.privileged); err != nil {
		return err
	}
	m.receiver = account

	return nil
}

// Receiver returns the withdrawal target which defaults to the
// owner when no redirect is configured.
func (m *Manager) Receiver() string {
	if m.receiver == "" {
		return m.owner
	}
	return m.receiver
}

// persist saves the registry and receiver in the db so that the
// administrative state survives restarts. The in-memory state is
// updated only after the write succeeds, so callers pass the staged
// values in.
func (m *Manager) persist(receiver string, privileged mapset.Set) error {
	state := &types.AccessState{Receiver: receiver}
	privileged.Each(func(v interface{}) bool {
		state.Privileged = append(state.Privileged, v.(string))
		return false
	})

	b, err := types.Encode(state)
	if err != nil {
		return fmt.Errorf("encode access state failed: %v", err)
	}

	err = m.database.Put(m.bucket, stateKey, b)
	if err != nil {
		return fmt.Errorf("save access state in db failed: %v", err)
	}

	return nil
}
