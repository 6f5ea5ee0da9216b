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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/WhiteAngel2/Token-BulkSender/crypto"
)

func TestNewConfig(t *testing.T) {
	ownerID, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)

	v := viper.New()
	v.Set("owner_id", ownerID)
	v.Set("owner_balance", uint64(1000000))
	v.Set("db_path", "/tmp/bulksender/test.db")
	v.Set("standard_fee", uint64(10))
	v.Set("privileged_fee", uint64(0))
	v.Set("registration_cost", uint64(500))

	c, err := NewConfig(v)
	assert.Nil(t, err)
	assert.Equal(t, ownerID, c.OwnerID)
	assert.Equal(t, uint64(1000000), c.OwnerBalance)
	assert.Equal(t, uint64(10), c.StandardFee)
	assert.Equal(t, uint64(0), c.PrivilegedFee)
	assert.Equal(t, uint64(500), c.RegistrationCost)
	// cache size falls back to the default when unset
	assert.Equal(t, 10000, c.AccountCacheSize)
}

func TestNewConfigMissingOwner(t *testing.T) {
	v := viper.New()
	v.Set("db_path", "/tmp/bulksender/test.db")

	_, err := NewConfig(v)
	assert.NotNil(t, err)
}

func TestNewConfigInvalidOwner(t *testing.T) {
	v := viper.New()
	v.Set("owner_id", "not-a-valid-key")
	v.Set("db_path", "/tmp/bulksender/test.db")

	_, err := NewConfig(v)
	assert.NotNil(t, err)
}

func TestNewConfigMissingDBPath(t *testing.T) {
	ownerID, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)

	v := viper.New()
	v.Set("owner_id", ownerID)

	_, err = NewConfig(v)
	assert.NotNil(t, err)
}
