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
	"errors"

	"github.com/spf13/viper"

	"github.com/WhiteAngel2/Token-BulkSender/crypto"
)

type Config struct {
	// account ID of the owner
	OwnerID string
	// initial native balance credited to the owner at bootstrap
	OwnerBalance uint64
	// database file path
	DBPath string
	// surcharge paid by standard accounts
	StandardFee uint64
	// surcharge paid by privileged accounts
	PrivilegedFee uint64
	// self-service privileged registration cost
	RegistrationCost uint64
	// size of the account LRU cache
	AccountCacheSize int
}

func NewConfig(v *viper.Viper) (*Config, error) {
	if v.GetString("owner_id") == "" {
		return nil, errors.New("owner ID is missing")
	}
	if !crypto.IsValidAccountKey(v.GetString("owner_id")) {
		return nil, errors.New("owner ID is not a valid account key")
	}
	if v.GetString("db_path") == "" {
		return nil, errors.New("db path is empty")
	}

	cacheSize := v.GetInt("account_cache_size")
	if cacheSize == 0 {
		cacheSize = 10000
	}

	c := Config{
		OwnerID:          v.GetString("owner_id"),
		OwnerBalance:     v.GetUint64("owner_balance"),
		DBPath:           v.GetString("db_path"),
		StandardFee:      v.GetUint64("standard_fee"),
		PrivilegedFee:    v.GetUint64("privileged_fee"),
		RegistrationCost: v.GetUint64("registration_cost"),
		AccountCacheSize: cacheSize,
	}

	return &c, nil
}
