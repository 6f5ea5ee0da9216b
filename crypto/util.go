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

package crypto

import (
	"crypto/rand"
	"io"
)

// Derive a batch record ID from the record content. A random nonce
// is mixed into the hash so that identical submissions still get
// distinct IDs.
func GetBatchID(b []byte) (string, error) {
	var nonce [8]byte
	_, err := io.ReadFull(rand.Reader, nonce[:])
	if err != nil {
		return "", err
	}

	h := SHA256HashBytes(append(nonce[:], b...))

	batchID := &BSKey{Code: KeyTypeBatchID, Hash: h}

	return EncodeKey(batchID), nil
}
