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
	"bytes"
	"encoding/binary"
	"errors"

	b58 "github.com/mr-tron/base58"
)

type KeyType uint8

const (
	_ KeyType = iota // skip zero
	KeyTypeAccountID
	KeyTypeSeed
	KeyTypeBatchID
)

var (
	ErrInvalidKey = errors.New("invalid key string")
)

// BSKey is the internal representation of various key hashes,
// Code identifies the type of the key hash.
type BSKey struct {
	Code KeyType
	Hash [32]byte
}

// Decode base58 encoded key string to BSKey.
func DecodeKey(key string) (*BSKey, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	b, err := b58.Decode(key)
	if err != nil {
		return nil, ErrInvalidKey
	}

	var bsKey BSKey
	r := bytes.NewReader(b)
	err = binary.Read(r, binary.BigEndian, &bsKey)
	if err != nil {
		return nil, ErrInvalidKey
	}

	switch bsKey.Code {
	case KeyTypeAccountID:
		fallthrough
	case KeyTypeSeed:
		fallthrough
	case KeyTypeBatchID:
		return &bsKey, nil
	}
	return nil, ErrInvalidKey
}

// Encode BSKey to base58 encoded key string.
func EncodeKey(bsKey *BSKey) string {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, bsKey)
	return b58.Encode(buf.Bytes())
}

// Check the validity of the supplied key string.
func IsValidKey(key string) bool {
	if _, err := DecodeKey(key); err != nil {
		return false
	}
	return true
}

// Check whether the supplied key string is a valid account ID.
func IsValidAccountKey(key string) bool {
	k, err := DecodeKey(key)
	if err != nil {
		return false
	}
	return k.Code == KeyTypeAccountID
}
