// internal/wallet/wallet.go

// Package wallet exposes the connection state the gallery and orchestrator
// consult before doing any work on the user's behalf. Ownership proofs and
// signing are out of scope; the address is an identifier, not a credential.
package wallet

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the wallet connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
)

func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "disconnected"
}

var ErrNotConnected = errors.New("wallet not connected")

// Provider reports the current wallet state. Implementations must be safe
// for concurrent use.
type Provider interface {
	Status() Status
	// Address returns the connected account address, or ErrNotConnected.
	Address() (string, error)
}

// StaticProvider serves a fixed address from configuration. It stands in for
// a real extension-bridge provider during CLI usage and tests.
type StaticProvider struct {
	address string
}

// NewStaticProvider validates and stores the address. An empty address yields
// a permanently disconnected provider.
func NewStaticProvider(address string) (*StaticProvider, error) {
	if address != "" && !ValidAddress(address) {
		return nil, fmt.Errorf("invalid wallet address %q", address)
	}
	return &StaticProvider{address: address}, nil
}

func (p *StaticProvider) Status() Status {
	if p.address == "" {
		return StatusDisconnected
	}
	return StatusConnected
}

func (p *StaticProvider) Address() (string, error) {
	if p.address == "" {
		return "", ErrNotConnected
	}
	return p.address, nil
}

// ValidAddress reports whether s is a plausible EVM account address: 0x
// followed by exactly 40 hex digits. Checksum casing is not enforced.
func ValidAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
