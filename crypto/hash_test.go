package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var key string = "bulk sending is cheap"

func TestSHA256HashBytes(t *testing.T) {
	d1 := SHA256HashBytes([]byte(key))
	d2 := SHA256HashBytes([]byte(key))
	assert.Equal(t, d1, d2)

	d3 := SHA256HashBytes([]byte("something else"))
	assert.NotEqual(t, d1, d3)
}
