// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_VersionFlag tests if the --version flag works correctly.
func TestRootCmd_VersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

// TestRootCmd_NoArgs tests the behavior when no arguments are provided.
func TestRootCmd_NoArgs(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})
	// rootCmd is a shared singleton; the --version flag set by a previous
	// test persists and would short-circuit execution here.
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		require.NoError(t, f.Value.Set("false"))
	}

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Mintfeed attaches NFT images")
}

// TestRootCmd_SubcommandsRegistered verifies the command tree wiring.
func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["attach"], "attach command should be registered")
	assert.True(t, names["gallery"], "gallery command should be registered")
}

// TestAttachCmd_Flags verifies the attach command declares its flags.
func TestAttachCmd_Flags(t *testing.T) {
	attach := newAttachCmd()
	require.NotNil(t, attach.Flags().Lookup("url"))
	require.NotNil(t, attach.Flags().Lookup("wait"))
}

// TestGalleryCmd_Subcommands verifies the gallery command tree.
func TestGalleryCmd_Subcommands(t *testing.T) {
	galleryCmd := newGalleryCmd()
	names := map[string]bool{}
	for _, c := range galleryCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["collections"])
}
