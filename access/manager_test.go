package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WhiteAngel2/Token-BulkSender/crypto"
	"github.com/WhiteAngel2/Token-BulkSender/db/memdb"
)

func TestOwnerIsAlwaysPrivileged(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	m := NewManager(memorydb, owner)

	assert.Equal(t, true, m.IsOwner(owner))
	assert.Equal(t, true, m.IsPrivileged(owner))

	other, _, _ := crypto.GetAccountKeypair()
	assert.Equal(t, false, m.IsOwner(other))
	assert.Equal(t, false, m.IsPrivileged(other))
}

func TestGrantRevokePrivilege(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	m := NewManager(memorydb, owner)

	a, _, _ := crypto.GetAccountKeypair()
	b, _, _ := crypto.GetAccountKeypair()

	// non-owner cannot mutate the registry
	err := m.GrantPrivilege(a, []string{a})
	assert.Equal(t, ErrUnauthorized, err)

	err = m.GrantPrivilege(owner, []string{a, b})
	assert.Nil(t, err)
	assert.Equal(t, true, m.IsPrivileged(a))
	assert.Equal(t, true, m.IsPrivileged(b))

	// granting an existing entry is a no-op
	err = m.GrantPrivilege(owner, []string{a})
	assert.Nil(t, err)
	assert.Equal(t, true, m.IsPrivileged(a))

	err = m.RevokePrivilege(owner, []string{a})
	assert.Nil(t, err)
	assert.Equal(t, false, m.IsPrivileged(a))
	assert.Equal(t, true, m.IsPrivileged(b))

	// revoking an absent entry is a no-op
	err = m.RevokePrivilege(owner, []string{a})
	assert.Nil(t, err)

	err = m.RevokePrivilege(a, []string{b})
	assert.Equal(t, ErrUnauthorized, err)
}

func TestFeeReceiver(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	m := NewManager(memorydb, owner)

	// defaults to the owner
	assert.Equal(t, owner, m.Receiver())

	recv, _, _ := crypto.GetAccountKeypair()
	err := m.SetFeeReceiver(recv, recv)
	assert.Equal(t, ErrUnauthorized, err)

	err = m.SetFeeReceiver(owner, recv)
	assert.Nil(t, err)
	assert.Equal(t, recv, m.Receiver())
}

func TestMutationRequiresPersist(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	m := NewManager(memorydb, owner)

	a, _, _ := crypto.GetAccountKeypair()
	err := m.GrantPrivilege(owner, []string{a})
	assert.Nil(t, err)

	// once the db is gone, mutations fail and the in-memory state
	// stays consistent with what was last persisted
	assert.Nil(t, memorydb.Close())

	b, _, _ := crypto.GetAccountKeypair()
	err = m.GrantPrivilege(owner, []string{b})
	assert.NotNil(t, err)
	assert.Equal(t, false, m.IsPrivileged(b))

	err = m.RevokePrivilege(owner, []string{a})
	assert.NotNil(t, err)
	assert.Equal(t, true, m.IsPrivileged(a))

	err = m.Register(b)
	assert.NotNil(t, err)
	assert.Equal(t, false, m.IsPrivileged(b))

	recv, _, _ := crypto.GetAccountKeypair()
	err = m.SetFeeReceiver(owner, recv)
	assert.NotNil(t, err)
	assert.Equal(t, owner, m.Receiver())
}

func TestStatePersistence(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	m := NewManager(memorydb, owner)

	a, _, _ := crypto.GetAccountKeypair()
	recv, _, _ := crypto.GetAccountKeypair()

	err := m.GrantPrivilege(owner, []string{a})
	assert.Nil(t, err)
	err = m.SetFeeReceiver(owner, recv)
	assert.Nil(t, err)

	// a new manager over the same db sees the persisted state
	m2 := NewManager(memorydb, owner)
	assert.Equal(t, true, m2.IsPrivileged(a))
	assert.Equal(t, recv, m2.Receiver())
}
