// File: cmd/gallery_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/config"
	"github.com/mintfeed/mintfeed-cli/internal/wallet"
)

// TestBuildGalleryService_WalletState verifies the wiring exposes the
// provider so commands can report connection state.
func TestBuildGalleryService_WalletState(t *testing.T) {
	prev := appCfg
	defer func() { appCfg = prev }()

	appCfg = config.NewDefaultConfig()
	svc, provider, err := buildGalleryService(zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, wallet.StatusDisconnected, provider.Status())

	cfg := config.NewDefaultConfig()
	cfg.SetWalletAddress("0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12")
	appCfg = cfg
	_, provider, err = buildGalleryService(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, wallet.StatusConnected, provider.Status())
}

// TestBuildGalleryService_RejectsBadWallet verifies a malformed configured
// address fails fast instead of reaching the indexer.
func TestBuildGalleryService_RejectsBadWallet(t *testing.T) {
	prev := appCfg
	defer func() { appCfg = prev }()

	cfg := config.NewDefaultConfig()
	cfg.SetWalletAddress("not-an-address")
	appCfg = cfg
	_, _, err := buildGalleryService(zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet")
}
