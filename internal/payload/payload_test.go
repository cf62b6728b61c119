// internal/payload/payload_test.go
package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func TestNewSniffsTypeAndNames(t *testing.T) {
	p, err := New("Bored Ape #42", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MIME)
	assert.Equal(t, "Bored-Ape-42.png", p.Name)
	assert.Equal(t, pngHeader, p.Data)

	f := p.File()
	assert.Equal(t, p.Name, f.Name)
	assert.Equal(t, p.MIME, f.Type)
}

func TestNewIgnoresDeclaredExtension(t *testing.T) {
	// A declared .gif on PNG bytes must not survive; the bytes decide.
	p, err := New("sneaky.gif", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "sneaky.png", p.Name)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New("x", nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewRejectsNonImage(t *testing.T) {
	_, err := New("x", []byte("<!DOCTYPE html><html></html>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"CryptoKitty", "CryptoKitty"},
		{"my cool nft", "my-cool-nft"},
		{"weird/../../path", "weird-path"},
		{"<script>alert(1)</script>", "scriptalert1-script"},
		{"   ", "nft"},
		{"💎💎💎", "nft"},
		{"name.png", "name"},
		{"a--b", "a-b"},
		{strings.Repeat("x", 200), strings.Repeat("x", 64)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}
