// internal/uploader/orchestrator.go

// Package uploader sequences one NFT attach: locate the compose area, match
// its file input, resolve the image bytes and fire the synthetic upload.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/composer"
	"github.com/mintfeed/mintfeed-cli/internal/feedback"
	"github.com/mintfeed/mintfeed-cli/internal/gallery"
	"github.com/mintfeed/mintfeed-cli/internal/inject"
	"github.com/mintfeed/mintfeed-cli/internal/payload"
)

var (
	ErrNoComposeArea = errors.New("no active compose area")
	ErrNoFileInput   = errors.New("no file input for compose area")
)

// ImageResolver supplies the injectable payload for an NFT that arrived
// without preloaded bytes.
type ImageResolver interface {
	Image(ctx context.Context, nft gallery.NFT) (payload.Payload, error)
}

// Orchestrator coordinates locate, match, fetch and trigger for one selected
// NFT at a time. A newer selection supersedes and cancels the in-flight one.
// It never returns errors to its caller; outcomes flow through the reporter.
type Orchestrator struct {
	locator  *composer.Locator
	matcher  *composer.Matcher
	trigger  *inject.Trigger
	images   ImageResolver
	reporter feedback.Reporter
	logger   *zap.Logger

	mu       sync.Mutex
	inflight *runToken
}

// runToken identifies one registered run so a finished run only clears its
// own slot, not a successor's.
type runToken struct {
	cancel context.CancelFunc
}

// New wires the pipeline stages together.
func New(locator *composer.Locator, matcher *composer.Matcher, trigger *inject.Trigger,
	images ImageResolver, reporter feedback.Reporter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = feedback.NewZapReporter(logger)
	}
	return &Orchestrator{
		locator:  locator,
		matcher:  matcher,
		trigger:  trigger,
		images:   images,
		reporter: reporter,
		logger:   logger,
	}
}

// HandleSelected runs one attach attempt to completion or cancellation.
// Locate, match and trigger run strictly in sequence; each stage depends on
// the previous stage's result. A superseded run goes quiet: its statuses
// would only confuse the user about the newer selection.
func (o *Orchestrator) HandleSelected(ctx context.Context, nft gallery.NFT, preloaded *payload.Payload) {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID), zap.String("nft", nft.ID))

	runCtx, token := o.supersede(ctx)
	defer o.retire(token)

	defer func() {
		if r := recover(); r != nil {
			log.Error("attach run panicked", zap.Any("panic", r))
			o.report(runID, false, "internal error while attaching image")
		}
	}()

	err := o.run(runCtx, log, nft, preloaded)
	switch {
	case err == nil:
		log.Info("image attached", zap.String("name", nft.Name))
		o.report(runID, true, fmt.Sprintf("attached %q to your post", nft.Name))
	case errors.Is(err, context.Canceled):
		log.Debug("attach run superseded or cancelled")
	default:
		log.Warn("attach run failed", zap.Error(err))
		o.report(runID, false, userMessage(err))
	}
}

// Cancel aborts the in-flight run, if any.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != nil {
		o.inflight.cancel()
		o.inflight = nil
	}
}

func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, nft gallery.NFT, preloaded *payload.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	compose := o.locator.FindActiveComposeArea()
	if compose == nil {
		return ErrNoComposeArea
	}
	log.Debug("compose area located", zap.String("tag", compose.TagName()))

	input := o.matcher.FindFileInputFor(compose)
	if input == nil {
		return ErrNoFileInput
	}

	p, err := o.resolvePayload(ctx, nft, preloaded)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return o.trigger.Inject(ctx, input, p.File())
}

func (o *Orchestrator) resolvePayload(ctx context.Context, nft gallery.NFT, preloaded *payload.Payload) (payload.Payload, error) {
	if preloaded != nil {
		return *preloaded, nil
	}
	return o.images.Image(ctx, nft)
}

// supersede cancels any in-flight run and registers this one.
func (o *Orchestrator) supersede(ctx context.Context) (context.Context, *runToken) {
	runCtx, cancel := context.WithCancel(ctx)
	token := &runToken{cancel: cancel}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != nil {
		o.inflight.cancel()
	}
	o.inflight = token
	return runCtx, token
}

// retire clears the in-flight slot if it still belongs to this run.
func (o *Orchestrator) retire(token *runToken) {
	o.mu.Lock()
	if o.inflight == token {
		o.inflight = nil
	}
	o.mu.Unlock()
	token.cancel()
}

func (o *Orchestrator) report(runID string, ok bool, msg string) {
	o.reporter.Report(feedback.Status{RunID: runID, OK: ok, Message: msg})
}

// userMessage maps pipeline failures onto the phrasing shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoComposeArea):
		return "open a post composer first, then pick an NFT"
	case errors.Is(err, ErrNoFileInput):
		return "could not find the composer's upload control"
	case errors.Is(err, inject.ErrInputGone):
		return "the composer changed while attaching; try again"
	case errors.Is(err, gallery.ErrBlockedURL):
		return "this NFT's image address is not fetchable"
	case errors.Is(err, gallery.ErrImageTooLarge):
		return "this NFT's image is too large to attach"
	case errors.Is(err, payload.ErrUnsupportedType):
		return "this NFT's file is not an image"
	case errors.Is(err, payload.ErrEmpty):
		return "this NFT's image could not be downloaded"
	default:
		return "could not attach the image; see the log for details"
	}
}
