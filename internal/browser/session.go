// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/config"
)

const (
	defaultOpTimeout         = 10 * time.Second
	defaultNavigationTimeout = 45 * time.Second
	defaultSnapshotInterval  = 250 * time.Millisecond
)

// Session owns one browser tab over the DevTools protocol. All page access
// goes through Eval so that every operation carries its own timeout and the
// same evaluate options.
type Session struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches a browser (or attaches to a remote one when
// remote_url is configured) and opens a fresh tab.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	s := &Session{
		logger: logger.Named("browser"),
		cfg:    cfg,
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		s.logger.Info("Attaching to remote browser.", zap.String("url", cfg.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		opts = append(opts,
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
			opts = append(opts, chromedp.WindowSize(w, h))
		}
		for _, arg := range cfg.Args {
			name := trimFlag(arg)
			if i := strings.Index(name, "="); i >= 0 {
				opts = append(opts, chromedp.Flag(name[:i], name[i+1:]))
			} else {
				opts = append(opts, chromedp.Flag(name, true))
			}
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	s.cancels = append(s.cancels, allocCancel)

	ctxOpts := []chromedp.ContextOption{}
	if cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(s.logger.Sugar().Debugf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)
	s.cancels = append(s.cancels, tabCancel)
	s.ctx = tabCtx

	// Force the browser process to start now so failures surface here
	// instead of on the first page operation.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	s.logger.Info("Browser session started.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// trimFlag strips a leading "--" so user-supplied args match chromedp's
// flag naming.
func trimFlag(arg string) string {
	for len(arg) > 0 && arg[0] == '-' {
		arg = arg[1:]
	}
	return arg
}

// Navigate loads the URL and waits for the body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = defaultNavigationTimeout
	}
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	s.logger.Debug("Navigating.", zap.String("url", url))
	err := chromedp.Run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body"))
	if err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, timeout, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	// Propagate cancellation of the caller's context without tying the tab
	// lifetime to it.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// Eval runs the script in the page and decodes its result into res. The
// script must be an expression (an IIFE works); res may be nil when the
// result is irrelevant.
func (s *Session) Eval(script string, res any) error {
	opCtx, cancel := context.WithTimeout(s.ctx, defaultOpTimeout)
	defer cancel()

	var action chromedp.Action
	if res == nil {
		var discard []byte
		action = chromedp.Evaluate(script, &discard, evalOptions)
	} else {
		action = chromedp.Evaluate(script, res, evalOptions)
	}
	if err := chromedp.Run(opCtx, action); err != nil {
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("script evaluation timed out after %v: %w", defaultOpTimeout, err)
		}
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// evalOptions mirrors the evaluate parameters every page script runs with:
// results come back by value, promises are awaited, and page-side console
// noise is suppressed.
func evalOptions(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
}

// SnapshotInterval returns the configured mutation polling cadence.
func (s *Session) SnapshotInterval() time.Duration {
	if s.cfg.SnapshotInterval > 0 {
		return s.cfg.SnapshotInterval
	}
	return defaultSnapshotInterval
}

// Close tears the tab and browser down. Safe to call more than once.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}
