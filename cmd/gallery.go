// -- cmd/gallery.go --
package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/gallery"
	"github.com/mintfeed/mintfeed-cli/internal/netguard"
	"github.com/mintfeed/mintfeed-cli/internal/observability"
	"github.com/mintfeed/mintfeed-cli/internal/wallet"
)

// newGalleryCmd groups the read-only wallet inspection commands.
func newGalleryCmd() *cobra.Command {
	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse the NFTs owned by the configured wallet",
	}
	galleryCmd.AddCommand(newGalleryListCmd())
	galleryCmd.AddCommand(newGalleryCollectionsCmd())
	return galleryCmd
}

func newGalleryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List owned NFTs, optionally filtered by name or collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, provider, err := buildGalleryService(observability.GetLogger())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallet: %s\n", provider.Status())

			var nfts []gallery.NFT
			if len(args) == 1 {
				nfts, err = svc.Filter(cmd.Context(), args[0])
			} else {
				nfts, err = svc.Owned(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(nfts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No NFTs found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLLECTION\tTOKEN")
			for _, n := range nfts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Name, n.Collection, n.TokenID)
			}
			return w.Flush()
		},
	}
}

func newGalleryCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "Summarize owned NFTs per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildGalleryService(observability.GetLogger())
			if err != nil {
				return err
			}

			counts, err := svc.Collections(cmd.Context())
			if err != nil {
				return err
			}

			names := lo.Keys(counts)
			sort.Strings(names)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLLECTION\tCOUNT")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%d\n", name, counts[name])
			}
			return w.Flush()
		},
	}
}

// buildGalleryService wires the wallet provider, the guarded HTTP client and
// the indexer client into the caching gallery service. The provider is
// returned alongside so commands can surface the connection state.
func buildGalleryService(logger *zap.Logger) (*gallery.Service, wallet.Provider, error) {
	provider, err := wallet.NewStaticProvider(appCfg.Wallet().Address)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid wallet configuration: %w", err)
	}

	gcfg := appCfg.Gallery()
	client, err := gallery.NewClient(gallery.ClientConfig{
		BaseURL:           gcfg.BaseURL,
		APIKey:            gcfg.APIKey,
		MaxImageBytes:     int64(gcfg.MaxImageMB) << 20,
		RequestsPerSecond: gcfg.RequestsPerSecond,
		MaxRetries:        gcfg.MaxRetries,
		HTTPClient:        netguard.NewHTTPClient(appCfg.Fetch().Timeout),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	svc, err := gallery.NewService(provider, client, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, provider, nil
}
