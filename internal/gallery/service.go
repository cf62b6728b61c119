// internal/gallery/service.go
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mintfeed/mintfeed-cli/internal/payload"
	"github.com/mintfeed/mintfeed-cli/internal/wallet"
)

var ErrUnknownNFT = errors.New("nft not in the owned set")

// Fetcher is the client surface the service consumes.
type Fetcher interface {
	ListOwned(ctx context.Context, address string) ([]NFT, error)
	FetchImage(ctx context.Context, nft NFT) (payload.Payload, error)
}

const (
	listCacheSize  = 16
	imageCacheSize = 64
	listTTL        = 2 * time.Minute
)

type cachedList struct {
	nfts    []NFT
	fetched time.Time
}

// Service caches owned-NFT listings and image payloads on top of the client,
// collapsing concurrent duplicate fetches.
type Service struct {
	wallet wallet.Provider
	client Fetcher
	logger *zap.Logger

	mu     sync.Mutex
	lists  *lru.Cache[string, cachedList]
	images *lru.Cache[string, payload.Payload]
	group  singleflight.Group

	now func() time.Time
}

// NewService builds the caching layer. The LRU sizes are small: one user
// rarely browses more than a handful of wallets per session.
func NewService(w wallet.Provider, client Fetcher, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lists, err := lru.New[string, cachedList](listCacheSize)
	if err != nil {
		return nil, fmt.Errorf("gallery: list cache: %w", err)
	}
	images, err := lru.New[string, payload.Payload](imageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("gallery: image cache: %w", err)
	}
	return &Service{
		wallet: w,
		client: client,
		logger: logger,
		lists:  lists,
		images: images,
		now:    time.Now,
	}, nil
}

// Owned returns the connected wallet's NFTs, sorted by collection then name,
// serving from cache within the TTL.
func (s *Service) Owned(ctx context.Context) ([]NFT, error) {
	addr, err := s.wallet.Address()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if entry, ok := s.lists.Get(addr); ok && s.now().Sub(entry.fetched) < listTTL {
		out := entry.nfts
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("list:"+addr, func() (any, error) {
		nfts, err := s.client.ListOwned(ctx, addr)
		if err != nil {
			return nil, err
		}
		sort.Slice(nfts, func(i, j int) bool {
			if nfts[i].Collection != nfts[j].Collection {
				return nfts[i].Collection < nfts[j].Collection
			}
			return nfts[i].Name < nfts[j].Name
		})
		s.mu.Lock()
		s.lists.Add(addr, cachedList{nfts: nfts, fetched: s.now()})
		s.mu.Unlock()
		s.logger.Debug("owned nft listing refreshed",
			zap.String("address", addr), zap.Int("count", len(nfts)))
		return nfts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]NFT), nil
}

// Lookup finds an owned NFT by id.
func (s *Service) Lookup(ctx context.Context, id string) (NFT, error) {
	nfts, err := s.Owned(ctx)
	if err != nil {
		return NFT{}, err
	}
	nft, ok := lo.Find(nfts, func(n NFT) bool { return n.ID == id })
	if !ok {
		return NFT{}, fmt.Errorf("%w: %q", ErrUnknownNFT, id)
	}
	return nft, nil
}

// Image returns the NFT's injectable payload, cached per image URL so
// repeated attaches of the same NFT hit the network once.
func (s *Service) Image(ctx context.Context, nft NFT) (payload.Payload, error) {
	key := nft.Image

	s.mu.Lock()
	if p, ok := s.images.Get(key); ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("image:"+key, func() (any, error) {
		p, err := s.client.FetchImage(ctx, nft)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.images.Add(key, p)
		s.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return payload.Payload{}, err
	}
	return v.(payload.Payload), nil
}

// Collections summarizes the owned set per collection, for CLI listing.
func (s *Service) Collections(ctx context.Context) (map[string]int, error) {
	nfts, err := s.Owned(ctx)
	if err != nil {
		return nil, err
	}
	return lo.CountValuesBy(nfts, func(n NFT) string {
		if n.Collection == "" {
			return "(uncategorized)"
		}
		return n.Collection
	}), nil
}

// Filter returns owned NFTs whose name or collection contains the query,
// case-insensitive.
func (s *Service) Filter(ctx context.Context, query string) ([]NFT, error) {
	nfts, err := s.Owned(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nfts, nil
	}
	q := strings.ToLower(query)
	return lo.Filter(nfts, func(n NFT, _ int) bool {
		return strings.Contains(strings.ToLower(n.Name), q) ||
			strings.Contains(strings.ToLower(n.Collection), q)
	}), nil
}
