// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintfeed/mintfeed-cli/internal/composer"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "mintfeed-cli", cfg.Logger().ServiceName)
	assert.Equal(t, "https://api.mintfeed.io", cfg.Gallery().BaseURL)
	assert.False(t, cfg.Browser().Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.Browser().SnapshotInterval)
}

func TestInjectorDefaultsRoundTrip(t *testing.T) {
	cfg := NewDefaultConfig()

	cc := cfg.Injector().ComposerConfig()
	assert.Equal(t, 50.0, cc.MinComposeWidth)
	assert.Equal(t, 20.0, cc.MinComposeHeight)
	assert.Equal(t, 0.05, cc.OpacityFloor)
	assert.Equal(t, 32, cc.MaxRecent)
	assert.Equal(t, 45*time.Second, cc.RecentTTL)

	ic := cfg.Injector().InjectConfig()
	assert.Equal(t, 120*time.Millisecond, ic.BlurDelay)
	assert.Equal(t, 400*time.Millisecond, ic.ProbeDelay)

	// Untouched defaults must survive the conversion unchanged.
	if diff := cmp.Diff(composer.DefaultConfig().Weights, cc.Weights); diff != "" {
		t.Errorf("scoring weights drifted from defaults (-want +got):\n%s", diff)
	}
}

func TestFileOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("injector.opacity_floor", 0.2)
	v.Set("injector.weights.in_modal", 99.0)
	v.Set("wallet.address", "0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	cc := cfg.Injector().ComposerConfig()
	assert.Equal(t, 0.2, cc.OpacityFloor)
	assert.Equal(t, 99.0, cc.Weights.InModal)
	assert.Equal(t, "0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12", cfg.Wallet().Address)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]any{
		"gallery.base_url":            "",
		"gallery.requests_per_second": -1.0,
		"injector.opacity_floor":      1.5,
		"injector.max_recent":         0,
	}
	for key, val := range cases {
		v := viper.New()
		SetDefaults(v)
		v.Set(key, val)

		_, err := NewConfigFromViper(v)
		assert.Error(t, err, key)
	}
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetBrowserHeadless(true)
	cfg.SetBrowserDebug(true)
	cfg.SetWalletAddress("0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12")

	assert.True(t, cfg.Browser().Headless)
	assert.True(t, cfg.Browser().Debug)
	assert.NotEmpty(t, cfg.Wallet().Address)
}
