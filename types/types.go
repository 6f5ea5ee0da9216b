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

package types

type AssetType uint8

const (
	// The platform's base currency, moved directly from the
	// caller's supplied payment.
	AssetTypeNative AssetType = iota
	// An issued token, moved by pulling from a pre-authorized
	// allowance.
	AssetTypeToken
)

// Asset identifies a transferable asset. For the native asset the
// name and issuer are empty.
type Asset struct {
	AssetType AssetType `json:"asset_type"`
	AssetName string    `json:"asset_name"`
	Issuer    string    `json:"issuer"`
}

// NativeAsset returns the identity of the base currency.
func NativeAsset() *Asset {
	return &Asset{AssetType: AssetTypeNative}
}

// Key returns the string identity of the asset which is used
// as a database key component.
func (a *Asset) Key() string {
	if a.AssetType == AssetTypeNative {
		return "native"
	}
	return a.AssetName + "/" + a.Issuer
}

// Account holds the native balance of an account.
type Account struct {
	AccountID string `json:"account_id"`
	Balance   uint64 `json:"balance"`
	Signer    string `json:"signer"`
}

// Holding is the custody line of an issued token for an account.
type Holding struct {
	AccountID string `json:"account_id"`
	Asset     *Asset `json:"asset"`
	Balance   uint64 `json:"balance"`
	Limit     uint64 `json:"limit"`
}

// Allowance is the remaining amount of an issued token the
// disbursement engine may pull from the granting account.
type Allowance struct {
	AccountID string `json:"account_id"`
	Asset     *Asset `json:"asset"`
	Remaining uint64 `json:"remaining"`
}

// FeeTable holds the configurable fee schedule scalars.
type FeeTable struct {
	// Surcharge paid by standard accounts per batch.
	StandardFee uint64 `json:"standard_fee"`
	// Surcharge paid by privileged accounts per batch,
	// zero unless the owner configures otherwise.
	PrivilegedFee uint64 `json:"privileged_fee"`
	// One-off payment for self-service privileged registration.
	RegistrationCost uint64 `json:"registration_cost"`
}

// AccessState is the persisted form of the access control state.
type AccessState struct {
	// Optional withdrawal redirect, empty means the owner.
	Receiver string `json:"receiver"`
	// Accounts exempt from the standard fee surcharge.
	Privileged []string `json:"privileged"`
}

// PoolEntry is the custodial balance accumulated for one asset.
type PoolEntry struct {
	Asset   *Asset `json:"asset"`
	Balance uint64 `json:"balance"`
}

// SendResult is the per-recipient outcome of a batch entry.
type SendResult struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	// Failure reason, empty on success.
	Err string `json:"err,omitempty"`
}

// OK reports whether the transfer to the recipient succeeded.
func (r *SendResult) OK() bool {
	return r.Err == ""
}

// BatchRecord is the persisted summary of one disbursement batch.
type BatchRecord struct {
	BatchID   string        `json:"batch_id"`
	Caller    string        `json:"caller"`
	Asset     *Asset        `json:"asset"`
	Total     uint64        `json:"total"`
	Fee       uint64        `json:"fee"`
	Refund    uint64        `json:"refund"`
	Results   []*SendResult `json:"results"`
	Timestamp int64         `json:"timestamp"`
}
