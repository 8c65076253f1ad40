package utils

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT binds the helpers below to the running test.
func SetT(t *testing.T) {
	testT = t
}

// NoErr fails the test on err and passes v through.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err fails the test unless err is set.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}

// Hex decodes a hex dump that may contain spaces and line breaks.
func Hex(s string) []byte {
	s = strings.Join(strings.Fields(s), "")
	buf, err := hex.DecodeString(s)
	require.NoError(testT, err)
	return buf
}
