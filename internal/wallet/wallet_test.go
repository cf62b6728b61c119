// internal/wallet/wallet_test.go
package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodAddr = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(goodAddr))
	assert.True(t, ValidAddress("0x"+"ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"))

	for _, bad := range []string{
		"",
		"0x",
		"52908400098527886E0F7030069857D2E4169EE7",
		"0x52908400098527886E0F7030069857D2E4169EE",
		"0x52908400098527886E0F7030069857D2E4169EE70",
		"0xZZ908400098527886E0F7030069857D2E4169EE7",
	} {
		assert.False(t, ValidAddress(bad), bad)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "disconnected", StatusDisconnected.String())
}

func TestStaticProvider(t *testing.T) {
	p, err := NewStaticProvider(goodAddr)
	require.NoError(t, err)
	assert.Equal(t, StatusConnected, p.Status())

	addr, err := p.Address()
	require.NoError(t, err)
	assert.Equal(t, goodAddr, addr)
}

func TestStaticProviderDisconnected(t *testing.T) {
	p, err := NewStaticProvider("")
	require.NoError(t, err)
	assert.Equal(t, StatusDisconnected, p.Status())

	_, err = p.Address()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStaticProviderRejectsGarbage(t *testing.T) {
	_, err := NewStaticProvider("not-an-address")
	assert.Error(t, err)
}
