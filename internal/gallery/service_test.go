// internal/gallery/service_test.go
package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintfeed/mintfeed-cli/internal/payload"
	"github.com/mintfeed/mintfeed-cli/internal/wallet"
)

type fakeFetcher struct {
	nfts       []NFT
	listCalls  int
	imageCalls int
	listErr    error
}

func (f *fakeFetcher) ListOwned(_ context.Context, _ string) ([]NFT, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]NFT(nil), f.nfts...), nil
}

func (f *fakeFetcher) FetchImage(_ context.Context, nft NFT) (payload.Payload, error) {
	f.imageCalls++
	return payload.Payload{Name: nft.Name + ".png", MIME: "image/png", Data: tinyPNG}, nil
}

const testAddr = "0xab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"

func testService(t *testing.T, f *fakeFetcher) *Service {
	t.Helper()
	w, err := wallet.NewStaticProvider(testAddr)
	require.NoError(t, err)
	svc, err := NewService(w, f, nil)
	require.NoError(t, err)
	return svc
}

func TestOwnedSortsAndCaches(t *testing.T) {
	f := &fakeFetcher{nfts: []NFT{
		{ID: "3", Name: "Zed", Collection: "apes"},
		{ID: "1", Name: "Abe", Collection: "cats"},
		{ID: "2", Name: "Abe", Collection: "apes"},
	}}
	svc := testService(t, f)
	ctx := context.Background()

	nfts, err := svc.Owned(ctx)
	require.NoError(t, err)
	require.Len(t, nfts, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{nfts[0].ID, nfts[1].ID, nfts[2].ID})

	_, err = svc.Owned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.listCalls, "second read comes from cache")
}

func TestOwnedCacheExpires(t *testing.T) {
	f := &fakeFetcher{nfts: []NFT{{ID: "1", Name: "A"}}}
	svc := testService(t, f)

	current := time.Now()
	svc.now = func() time.Time { return current }

	_, err := svc.Owned(context.Background())
	require.NoError(t, err)

	current = current.Add(listTTL + time.Second)
	_, err = svc.Owned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.listCalls, "expired entry refreshes")
}

func TestOwnedRequiresWallet(t *testing.T) {
	w, err := wallet.NewStaticProvider("")
	require.NoError(t, err)
	svc, err := NewService(w, &fakeFetcher{}, nil)
	require.NoError(t, err)

	_, err = svc.Owned(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNotConnected)
}

func TestLookup(t *testing.T) {
	f := &fakeFetcher{nfts: []NFT{{ID: "7", Name: "Lucky"}}}
	svc := testService(t, f)

	nft, err := svc.Lookup(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Lucky", nft.Name)

	_, err = svc.Lookup(context.Background(), "404")
	assert.ErrorIs(t, err, ErrUnknownNFT)
}

func TestImageCaches(t *testing.T) {
	f := &fakeFetcher{}
	svc := testService(t, f)
	nft := NFT{ID: "1", Name: "Cat", Image: "https://cdn.example.com/cat.png"}

	p1, err := svc.Image(context.Background(), nft)
	require.NoError(t, err)
	p2, err := svc.Image(context.Background(), nft)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, f.imageCalls, "same image url fetches once")
}

func TestListErrorPropagates(t *testing.T) {
	sentinel := errors.New("indexer down")
	svc := testService(t, &fakeFetcher{listErr: sentinel})

	_, err := svc.Owned(context.Background())
	assert.ErrorIs(t, err, sentinel)
}

func TestFilterAndCollections(t *testing.T) {
	f := &fakeFetcher{nfts: []NFT{
		{ID: "1", Name: "Bored Ape", Collection: "BAYC"},
		{ID: "2", Name: "Mutant Ape", Collection: "MAYC"},
		{ID: "3", Name: "Punk", Collection: ""},
	}}
	svc := testService(t, f)
	ctx := context.Background()

	apes, err := svc.Filter(ctx, "ape")
	require.NoError(t, err)
	assert.Len(t, apes, 2)

	all, err := svc.Filter(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cols, err := svc.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"BAYC": 1, "MAYC": 1, "(uncategorized)": 1}, cols)
}
