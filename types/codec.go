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

import (
	"encoding/json"
)

// Encode state type to bytes for persistence.
func Encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Decode bytes to Account.
func DecodeAccount(b []byte) (*Account, error) {
	acc := &Account{}
	if err := json.Unmarshal(b, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Decode bytes to Asset.
func DecodeAsset(b []byte) (*Asset, error) {
	asset := &Asset{}
	if err := json.Unmarshal(b, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Decode bytes to Holding.
func DecodeHolding(b []byte) (*Holding, error) {
	h := &Holding{}
	if err := json.Unmarshal(b, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Decode bytes to Allowance.
func DecodeAllowance(b []byte) (*Allowance, error) {
	al := &Allowance{}
	if err := json.Unmarshal(b, al); err != nil {
		return nil, err
	}
	return al, nil
}

// Decode bytes to FeeTable.
func DecodeFeeTable(b []byte) (*FeeTable, error) {
	ft := &FeeTable{}
	if err := json.Unmarshal(b, ft); err != nil {
		return nil, err
	}
	return ft, nil
}

// Decode bytes to AccessState.
func DecodeAccessState(b []byte) (*AccessState, error) {
	as := &AccessState{}
	if err := json.Unmarshal(b, as); err != nil {
		return nil, err
	}
	return as, nil
}

// Decode bytes to PoolEntry.
func DecodePoolEntry(b []byte) (*PoolEntry, error) {
	pe := &PoolEntry{}
	if err := json.Unmarshal(b, pe); err != nil {
		return nil, err
	}
	return pe, nil
}

// Decode bytes to BatchRecord.
func DecodeBatchRecord(b []byte) (*BatchRecord, error) {
	br := &BatchRecord{}
	if err := json.Unmarshal(b, br); err != nil {
		return nil, err
	}
	return br, nil
}
