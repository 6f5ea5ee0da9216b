package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddUint64(t *testing.T) {
	sum, err := AddUint64(uint64(1), uint64(2))
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), sum)

	_, err = AddUint64(uint64(math.MaxUint64), uint64(1))
	assert.Equal(t, ErrUint64Overflow, err)

	// max + 0 still fits
	sum, err = AddUint64(uint64(math.MaxUint64), uint64(0))
	assert.Nil(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)
}

func TestMulUint64(t *testing.T) {
	prod, err := MulUint64(uint64(10), uint64(25))
	assert.Nil(t, err)
	assert.Equal(t, uint64(250), prod)

	prod, err = MulUint64(uint64(0), uint64(math.MaxUint64))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), prod)

	_, err = MulUint64(uint64(math.MaxUint64), uint64(2))
	assert.Equal(t, ErrUint64Overflow, err)
}

func TestSumUint64(t *testing.T) {
	sum, err := SumUint64([]uint64{1, 2, 3, 4})
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), sum)

	sum, err = SumUint64(nil)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), sum)

	_, err = SumUint64([]uint64{math.MaxUint64, 1})
	assert.Equal(t, ErrUint64Overflow, err)
}

func TestUint64Comparison(t *testing.T) {
	assert.Equal(t, uint64(2), MaxUint64(uint64(1), uint64(2)))
	assert.Equal(t, uint64(2), MinUint64(uint64(3), uint64(2)))
}
