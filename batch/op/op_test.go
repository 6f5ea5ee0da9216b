package op

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WhiteAngel2/Token-BulkSender/account"
	"github.com/WhiteAngel2/Token-BulkSender/crypto"
	"github.com/WhiteAngel2/Token-BulkSender/db/memdb"
	"github.com/WhiteAngel2/Token-BulkSender/types"
)

func TestValidateAsset(t *testing.T) {
	issuer, _, _ := crypto.GetAccountKeypair()

	assert.Equal(t, ErrInvalidAsset, ValidateAsset(nil))
	assert.Nil(t, ValidateAsset(types.NativeAsset()))
	assert.Nil(t, ValidateAsset(&types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: issuer}))
	assert.Equal(t, ErrInvalidAsset, ValidateAsset(&types.Asset{AssetType: types.AssetTypeToken, AssetName: "", Issuer: issuer}))
	assert.Equal(t, ErrInvalidAsset, ValidateAsset(&types.Asset{AssetType: types.AssetTypeToken, AssetName: "LONG", Issuer: issuer}))
	assert.Equal(t, ErrInvalidAsset, ValidateAsset(&types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: ""}))
}

func TestNativeTransferOp(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb, 100)

	recipient, _, _ := crypto.GetAccountKeypair()
	err := am.CreateAccount(memorydb, recipient, 100, recipient)
	assert.Nil(t, err)

	dt, _ := memorydb.Begin()
	transfer := &NativeTransfer{AM: am, Recipient: recipient, Amount: 50}
	err = transfer.Apply(dt)
	assert.Nil(t, err)
	assert.Nil(t, dt.Commit())

	acc, err := am.GetAccount(memorydb, recipient)
	assert.Nil(t, err)
	assert.Equal(t, uint64(150), acc.Balance)
}

func TestNativeTransferUnknownRecipient(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb, 100)

	unknown, _, _ := crypto.GetAccountKeypair()

	dt, _ := memorydb.Begin()
	transfer := &NativeTransfer{AM: am, Recipient: unknown, Amount: 50}
	err := transfer.Apply(dt)
	assert.Equal(t, account.ErrAccountNotExist, err)
	assert.Nil(t, dt.Rollback())
}

func TestAllowanceTransferOp(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb, 100)

	issuer, _, _ := crypto.GetAccountKeypair()
	caller, _, _ := crypto.GetAccountKeypair()
	recipient, _, _ := crypto.GetAccountKeypair()
	asset := &types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: issuer}

	// fund the caller's custody line and grant an allowance
	err := am.CreateHolding(memorydb, caller, asset, 100000)
	assert.Nil(t, err)
	holding, _ := am.GetHolding(memorydb, caller, asset)
	assert.Nil(t, am.AddHoldingBalance(holding, 1000))
	assert.Nil(t, am.SaveHolding(memorydb, holding))
	assert.Nil(t, am.Approve(memorydb, caller, asset, 600))

	err = am.CreateHolding(memorydb, recipient, asset, 100000)
	assert.Nil(t, err)

	dt, _ := memorydb.Begin()
	transfer := &AllowanceTransfer{AM: am, Caller: caller, Recipient: recipient, Asset: asset, Amount: 400}
	err = transfer.Apply(dt)
	assert.Nil(t, err)
	assert.Nil(t, dt.Commit())

	src, _ := am.GetHolding(memorydb, caller, asset)
	assert.Equal(t, uint64(600), src.Balance)
	dst, _ := am.GetHolding(memorydb, recipient, asset)
	assert.Equal(t, uint64(400), dst.Balance)
	al, _ := am.GetAllowance(memorydb, caller, asset)
	assert.Equal(t, uint64(200), al.Remaining)

	// a second pull beyond the remaining allowance fails
	dt, _ = memorydb.Begin()
	transfer = &AllowanceTransfer{AM: am, Caller: caller, Recipient: recipient, Asset: asset, Amount: 300}
	err = transfer.Apply(dt)
	assert.Equal(t, account.ErrAllowanceExceeded, err)
	assert.Nil(t, dt.Rollback())
}

func TestAllowanceTransferFromIssuer(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb, 100)

	issuer, _, _ := crypto.GetAccountKeypair()
	recipient, _, _ := crypto.GetAccountKeypair()
	asset := &types.Asset{AssetType: types.AssetTypeToken, AssetName: "BLK", Issuer: issuer}

	// issuing is a pull from the issuer's synthetic line
	assert.Nil(t, am.Approve(memorydb, issuer, asset, 1000))
	assert.Nil(t, am.CreateHolding(memorydb, recipient, asset, 100000))

	dt, _ := memorydb.Begin()
	transfer := &AllowanceTransfer{AM: am, Caller: issuer, Recipient: recipient, Asset: asset, Amount: 1000}
	assert.Nil(t, transfer.Apply(dt))
	assert.Nil(t, dt.Commit())

	dst, _ := am.GetHolding(memorydb, recipient, asset)
	assert.Equal(t, uint64(1000), dst.Balance)
}
