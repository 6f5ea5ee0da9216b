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

package util

import (
	"errors"
	"math"
)

var (
	ErrUint64Overflow = errors.New("uint64 overflow")
)

// Add two uint64 values with overflow checking, silent
// wraparound is never acceptable for balance math.
func AddUint64(x uint64, y uint64) (uint64, error) {
	if x > math.MaxUint64-y {
		return 0, ErrUint64Overflow
	}
	return x + y, nil
}

// Multiply two uint64 values with overflow checking.
func MulUint64(x uint64, y uint64) (uint64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	if x > math.MaxUint64/y {
		return 0, ErrUint64Overflow
	}
	return x * y, nil
}

// Sum a list of uint64 values with overflow checking.
func SumUint64(xs []uint64) (uint64, error) {
	var sum uint64
	var err error
	for _, x := range xs {
		sum, err = AddUint64(sum, x)
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}

// Find the max between two uint64 values
func MaxUint64(x uint64, y uint64) uint64 {
	if x >= y {
		return x
	}
	return y
}

// Find the min between two uint64 values
func MinUint64(x uint64, y uint64) uint64 {
	if x <= y {
		return x
	}
	return y
}
