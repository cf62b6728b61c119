// internal/gallery/client.go

// Package gallery talks to the NFT indexer: listing the NFTs a wallet owns
// and fetching their images as injectable payloads.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mintfeed/mintfeed-cli/internal/netguard"
	"github.com/mintfeed/mintfeed-cli/internal/payload"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrBlockedURL = errors.New("image url blocked by fetch policy")
	// ErrImageTooLarge guards memory: NFT images are unbounded user content.
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// NFT is one owned token as the indexer reports it.
type NFT struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Collection string `json:"collection,omitempty"`
	TokenID    string `json:"token_id,omitempty"`
}

// listPage is one page of the indexer's owned-NFT listing.
type listPage struct {
	NFTs []NFT  `json:"nfts"`
	Next string `json:"next"`
}

// ClientConfig tunes the indexer client.
type ClientConfig struct {
	BaseURL string
	// APIKey, when set, is sent as a bearer token.
	APIKey string
	// MaxImageBytes caps a single image download. Zero means the default.
	MaxImageBytes int64
	// RequestsPerSecond throttles indexer calls. Zero means the default.
	RequestsPerSecond float64
	// MaxRetries bounds retry attempts on 5xx and transport errors.
	MaxRetries int
	// HTTPClient overrides the guarded default, for tests.
	HTTPClient *http.Client
	// Checker overrides the default public-web URL policy, for tests.
	Checker URLChecker
}

// URLChecker validates an image URL before any fetch is attempted.
type URLChecker interface {
	CheckURL(ctx context.Context, raw string) error
}

const (
	defaultMaxImageBytes = 16 << 20
	defaultRPS           = 4.0
	defaultMaxRetries    = 2
	pageSize             = 50
)

// Client is a rate-limited, retrying indexer API client.
type Client struct {
	cfg     ClientConfig
	httpc   *http.Client
	policy  URLChecker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a client. When cfg.HTTPClient is nil the guarded client is
// used, so every request is re-checked at dial time.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("gallery: base url required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("gallery: parsing base url: %w", err)
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = defaultMaxImageBytes
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = netguard.NewHTTPClient(30 * time.Second)
	}
	checker := cfg.Checker
	if checker == nil {
		checker = netguard.NewPolicy(nil)
	}
	return &Client{
		cfg:     cfg,
		httpc:   httpc,
		policy:  checker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}, nil
}

// ListOwned walks the cursor-paginated listing until the indexer reports no
// further page.
func (c *Client) ListOwned(ctx context.Context, address string) ([]NFT, error) {
	var all []NFT
	cursor := ""
	for {
		page, err := c.listPage(ctx, address, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.NFTs...)
		if page.Next == "" {
			return all, nil
		}
		cursor = page.Next
	}
}

func (c *Client) listPage(ctx context.Context, address, cursor string) (*listPage, error) {
	u := fmt.Sprintf("%s/v1/accounts/%s/nfts?limit=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(address), pageSize)
	if cursor != "" {
		u += "&cursor=" + url.QueryEscape(cursor)
	}

	body, err := c.get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var page listPage
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return nil, fmt.Errorf("gallery: decoding listing: %w", err)
	}
	return &page, nil
}

// FetchImage downloads an NFT's image and wraps it into a named payload. The
// URL goes through the fetch policy first: indexer metadata is not trusted.
func (c *Client) FetchImage(ctx context.Context, nft NFT) (payload.Payload, error) {
	if err := c.policy.CheckURL(ctx, nft.Image); err != nil {
		return payload.Payload{}, fmt.Errorf("%w: %v", ErrBlockedURL, err)
	}

	body, err := c.get(ctx, nft.Image, "image/*")
	if err != nil {
		return payload.Payload{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, c.cfg.MaxImageBytes+1))
	if err != nil {
		return payload.Payload{}, fmt.Errorf("gallery: reading image: %w", err)
	}
	if int64(len(data)) > c.cfg.MaxImageBytes {
		return payload.Payload{}, fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, c.cfg.MaxImageBytes)
	}

	p, err := payload.New(nft.Name, data)
	if err != nil {
		return payload.Payload{}, fmt.Errorf("gallery: image for %q: %w", nft.ID, err)
	}
	return p, nil
}

// get performs one rate-limited GET with bounded retries on 5xx and
// transport errors. 4xx is terminal.
func (c *Client) get(ctx context.Context, u, accept string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 250 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			c.logger.Debug("retrying request", zap.String("url", u), zap.Int("attempt", attempt))
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("gallery: building request: %w", err)
		}
		req.Header.Set("Accept", accept)
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("gallery: %s returned %s", u, resp.Status)
			continue
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("gallery: %s returned %s", u, resp.Status)
		}
	}
	return nil, fmt.Errorf("gallery: giving up after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}
