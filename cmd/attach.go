// -- cmd/attach.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/browser"
	"github.com/mintfeed/mintfeed-cli/internal/composer"
	"github.com/mintfeed/mintfeed-cli/internal/feedback"
	"github.com/mintfeed/mintfeed-cli/internal/inject"
	"github.com/mintfeed/mintfeed-cli/internal/observability"
	"github.com/mintfeed/mintfeed-cli/internal/uploader"
)

// newAttachCmd creates and configures the `attach` command, the main
// workflow: open the page, wait for the user to start a post, then drop the
// chosen NFT image into the composer's file input.
func newAttachCmd() *cobra.Command {
	var (
		pageURL string
		waitFor time.Duration
	)

	attachCmd := &cobra.Command{
		Use:   "attach <nft-id>",
		Short: "Attach an NFT image to a post being composed in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			svc, _, err := buildGalleryService(logger)
			if err != nil {
				return err
			}
			nft, err := svc.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			logger.Info("NFT selected", zap.String("id", nft.ID), zap.String("name", nft.Name))

			sess, err := browser.NewSession(ctx, appCfg.Browser(), logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Navigate(ctx, pageURL); err != nil {
				return err
			}
			page := browser.NewPage(sess, logger)

			icfg := appCfg.Injector()
			ccfg := icfg.ComposerConfig()
			validator := composer.NewValidator(ccfg, page)
			watcher := composer.NewWatcher(page, validator, ccfg, logger)
			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()

			locator := composer.NewLocator(page, watcher, ccfg, logger)
			matcher := composer.NewMatcher(page, validator, logger)
			trigger := inject.NewTrigger(validator, nil, icfg.InjectConfig(), logger)

			fmt.Fprintln(cmd.OutOrStdout(), "Waiting for a post composer. Start a new post in the browser window.")
			if err := waitForComposer(ctx, locator, waitFor); err != nil {
				return err
			}

			var outcome feedback.Status
			reporter := feedback.Multi{
				feedback.NewZapReporter(logger),
				feedback.Func(func(s feedback.Status) { outcome = s }),
			}
			orch := uploader.New(locator, matcher, trigger, svc, reporter, logger)
			orch.HandleSelected(ctx, nft, nil)

			if outcome.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
			}
			if !outcome.OK {
				return errors.New("attach did not complete")
			}
			return nil
		},
	}

	attachCmd.Flags().StringVar(&pageURL, "url", "", "page with the post composer (required)")
	attachCmd.Flags().DurationVar(&waitFor, "wait", 2*time.Minute, "how long to wait for a composer to appear")
	_ = attachCmd.MarkFlagRequired("url")
	return attachCmd
}

// waitForComposer polls until a usable compose surface shows up. The user
// usually has to click into the page first, so this is the long pole.
func waitForComposer(ctx context.Context, locator *composer.Locator, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if locator.FindActiveComposeArea() != nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no post composer appeared within %v", limit)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
