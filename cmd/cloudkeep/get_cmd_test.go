package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSerials(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		serials, err := parseSerials("3")
		require.NoError(t, err)
		assert.Equal(t, []int{3}, serials)
	})

	t.Run("comma separated with spaces", func(t *testing.T) {
		serials, err := parseSerials("1, 2,3")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, serials)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseSerials("  ")
		assert.Error(t, err)
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := parseSerials("1,two")
		assert.Error(t, err)
	})
}
