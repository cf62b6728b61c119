// internal/netguard/netguard.go

// Package netguard restricts outbound image fetches to the public web. NFT
// metadata is attacker-influenced, so an image URL pointing at loopback or an
// internal range must be rejected before any connection is attempted.
package netguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var (
	ErrScheme         = errors.New("url scheme not allowed")
	ErrHost           = errors.New("url host not allowed")
	ErrPrivateAddress = errors.New("address resolves to a private or local network")
)

// Resolver is the subset of net.Resolver used for host checks.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Policy validates URLs against the public-web-only rule.
type Policy struct {
	resolver Resolver
}

// NewPolicy builds a policy using the default system resolver when r is nil.
func NewPolicy(r Resolver) *Policy {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Policy{resolver: r}
}

// CheckURL rejects non-http(s) schemes, local host names and any host whose
// addresses fall outside the public internet. Resolution happens here so a
// hostname cannot smuggle in a private address.
func (p *Policy) CheckURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrScheme, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrHost)
	}
	if ip := net.ParseIP(host); ip != nil {
		if isPrivate(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
		}
		return nil
	}
	if isLocalName(host) {
		return fmt.Errorf("%w: %q", ErrHost, host)
	}

	addrs, err := p.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %q has no addresses", ErrHost, host)
	}
	for _, a := range addrs {
		if isPrivate(a.IP) {
			return fmt.Errorf("%w: %q resolves to %s", ErrPrivateAddress, host, a.IP)
		}
	}
	return nil
}

func isLocalName(host string) bool {
	h := strings.ToLower(strings.TrimSuffix(host, "."))
	return h == "localhost" || strings.HasSuffix(h, ".localhost") ||
		strings.HasSuffix(h, ".local") || strings.HasSuffix(h, ".internal") ||
		!strings.Contains(h, ".")
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		isULA(ip) ||
		isCGNAT(ip)
}

// isULA reports IPv6 unique local addresses (fc00::/7), the v6 analogue of
// RFC 1918 space.
func isULA(ip net.IP) bool {
	v6 := ip.To16()
	return v6 != nil && ip.To4() == nil && v6[0]&0xfe == 0xfc
}

// isCGNAT reports carrier-grade NAT space (100.64.0.0/10), reachable on many
// ISP-internal networks but never a public image host.
func isCGNAT(ip net.IP) bool {
	v4 := ip.To4()
	return v4 != nil && v4[0] == 100 && v4[1]&0xc0 == 64
}

// NewHTTPClient returns a client whose dialer re-checks the resolved address
// at connect time, closing the window between CheckURL's lookup and the
// dial's own resolution.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrHost, address)
			}
			ip := net.ParseIP(host)
			if ip == nil || isPrivate(ip) {
				return fmt.Errorf("%w: dialing %s", ErrPrivateAddress, address)
			}
			return nil
		},
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}
