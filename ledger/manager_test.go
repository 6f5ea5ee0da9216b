package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WhiteAngel2/Token-BulkSender/access"
	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/crypto"
	"github.com/WhiteAngel2/Token-BulkSender/db/memdb"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

func TestCreditAndBalance(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	native := types.NativeAsset()

	balance, err := lm.Balance(native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), balance)

	dt, err := memorydb.Begin()
	assert.Nil(t, err)
	err = lm.Credit(dt, native, 10)
	assert.Nil(t, err)
	err = lm.Credit(dt, native, 5)
	assert.Nil(t, err)
	err = dt.Commit()
	assert.Nil(t, err)

	balance, err = lm.Balance(native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(15), balance)
}

func TestCreditRollsBackWithTx(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	native := types.NativeAsset()

	dt, err := memorydb.Begin()
	assert.Nil(t, err)
	err = lm.Credit(dt, native, 10)
	assert.Nil(t, err)
	err = dt.Rollback()
	assert.Nil(t, err)

	balance, err := lm.Balance(native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestWithdrawNative(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	err := acm.CreateAccount(memorydb, owner, 0, owner)
	assert.Nil(t, err)

	native := types.NativeAsset()
	dt, _ := memorydb.Begin()
	err = lm.Credit(dt, native, 100)
	assert.Nil(t, err)
	assert.Nil(t, dt.Commit())

	// a stranger may not withdraw
	stranger, _, _ := crypto.GetAccountKeypair()
	_, err = lm.Withdraw(stranger, native)
	assert.Equal(t, access.ErrUnauthorized, err)

	amount, err := lm.Withdraw(owner, native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(100), amount)

	acc, err := acm.GetAccount(memorydb, owner)
	assert.Nil(t, err)
	assert.Equal(t, uint64(100), acc.Balance)

	// pool is reset to zero
	balance, err := lm.Balance(native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestWithdrawByReceiver(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	recv, _, _ := crypto.GetAccountKeypair()
	err := acm.CreateAccount(memorydb, recv, 0, recv)
	assert.Nil(t, err)
	err = am.SetFeeReceiver(owner, recv)
	assert.Nil(t, err)

	native := types.NativeAsset()
	dt, _ := memorydb.Begin()
	assert.Nil(t, lm.Credit(dt, native, 25))
	assert.Nil(t, dt.Commit())

	amount, err := lm.Withdraw(recv, native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(25), amount)

	acc, err := acm.GetAccount(memorydb, recv)
	assert.Nil(t, err)
	assert.Equal(t, uint64(25), acc.Balance)
}

func TestWithdrawToken(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	issuer, _, _ := crypto.GetAccountKeypair()
	asset := &types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: issuer}

	dt, _ := memorydb.Begin()
	assert.Nil(t, lm.Credit(dt, asset, 40))
	assert.Nil(t, dt.Commit())

	// the owner has no custody line yet, withdrawal establishes one
	amount, err := lm.Withdraw(owner, asset)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), amount)

	holding, err := acm.GetHolding(memorydb, owner, asset)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), holding.Balance)
}

func TestWithdrawTokenByIssuer(t *testing.T) {
	memorydb := memdb.New()
	owner, _, _ := crypto.GetAccountKeypair()
	am := access.NewManager(memorydb, owner)
	acm := account.NewManager(memorydb, 100)
	lm := NewManager(memorydb, am, acm)

	// the owner issues the token itself
	asset := &types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: owner}

	dt, _ := memorydb.Begin()
	assert.Nil(t, lm.Credit(dt, asset, 40))
	assert.Nil(t, dt.Commit())

	// withdrawing to the issuer succeeds without touching the
	// synthetic custody line
	amount, err := lm.Withdraw(owner, asset)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), amount)

	holding, err := acm.GetHolding(memorydb, owner, asset)
	assert.Nil(t, err)
	assert.Equal(t, uint64(math.MaxUint64), holding.Balance)
	assert.Equal(t, uint64(math.MaxUint64), holding.Limit)

	balance, err := lm.Balance(asset)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), balance)
}
