package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByLabel(t *testing.T) {
	usdc, err := ByLabel("USDC")
	require.NoError(t, err)
	assert.Equal(t, USDC, usdc.Address)
	assert.Equal(t, uint8(6), usdc.Decimals)
	assert.False(t, usdc.Native)

	sol, err := ByLabel(" sol ")
	require.NoError(t, err)
	assert.Equal(t, SOL, sol.Address)
	assert.True(t, sol.Native)

	_, err = ByLabel("DOGE")
	require.Error(t, err)
}

func TestByAddress(t *testing.T) {
	bonk, err := ByAddress(BONK)
	require.NoError(t, err)
	assert.Equal(t, "BONK", bonk.Label)
	assert.Equal(t, uint8(5), bonk.Decimals)

	_, err = ByAddress("11111111111111111111111111111111")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	byLabel, err := Resolve("usdt")
	require.NoError(t, err)
	byAddress, err2 := Resolve(USDT)
	require.NoError(t, err2)
	assert.Equal(t, byLabel, byAddress)

	_, err = Resolve("nonsense")
	require.Error(t, err)
}

func TestList_AddressesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, token := range List {
		assert.NotEmpty(t, token.Address)
		assert.NotEmpty(t, token.Label)
		assert.False(t, seen[token.Address], "duplicate address %s", token.Address)
		seen[token.Address] = true
	}
}
