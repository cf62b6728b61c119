// internal/inject/trigger.go
package inject

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/composer"
	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// SyntheticEventName marks the auxiliary custom event so host-side helpers
// can distinguish our dispatch from a genuine user file pick.
const SyntheticEventName = "mintfeed:synthetic-upload"

// ErrInputGone is returned when the matched file input fails re-validation at
// trigger time. The page may have torn it down or hidden it between matching
// and use.
var ErrInputGone = errors.New("file input no longer valid")

// Config tunes the settle delays around the dispatch sequence.
type Config struct {
	// BlurDelay is how long host-side handlers get to react before the input
	// is blurred back out of focus.
	BlurDelay time.Duration
	// ProbeDelay is the additional wait before the diagnostic indicator probe.
	ProbeDelay time.Duration
}

// DefaultConfig returns delays tuned against the reference host pages.
func DefaultConfig() Config {
	return Config{
		BlurDelay:  120 * time.Millisecond,
		ProbeDelay: 400 * time.Millisecond,
	}
}

// DispatchStrategy delivers an assigned file list to the host page's event
// handlers. The default EventSequence imitates a user-driven file pick; it is
// a compatibility shim against framework internals and inherently fragile, so
// alternates can be swapped in if the host changes its event handling.
type DispatchStrategy interface {
	Deliver(ctx context.Context, input dom.Element, files []dom.File) error
}

// Trigger assigns a payload to a file input and fires the event sequence.
type Trigger struct {
	validator *composer.Validator
	strategy  DispatchStrategy
	logger    *zap.Logger
}

// NewTrigger builds a trigger. A nil strategy selects the default
// EventSequence.
func NewTrigger(validator *composer.Validator, strategy DispatchStrategy, cfg Config, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strategy == nil {
		strategy = &EventSequence{cfg: cfg, logger: logger}
	}
	return &Trigger{validator: validator, strategy: strategy, logger: logger}
}

// Inject re-validates the input and hands the file to the dispatch strategy.
// Re-validation happens here rather than trusting the matcher's earlier
// verdict: the host page may have rebuilt its composer in between.
func (t *Trigger) Inject(ctx context.Context, input dom.Element, file dom.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if input == nil || !input.Attached() || !t.validator.IsValidFileInput(input) {
		return ErrInputGone
	}
	t.logger.Debug("injecting file",
		zap.String("name", file.Name),
		zap.String("type", file.Type),
		zap.Int("bytes", len(file.Data)))
	return t.strategy.Deliver(ctx, input, []dom.File{file})
}

// EventSequence is the default dispatch strategy: assign the file list, then
// replay the event order a real file pick produces, with targets explicitly
// bound because some host frameworks read event.target instead of relying on
// ambient dispatch semantics.
type EventSequence struct {
	cfg    Config
	logger *zap.Logger
}

// NewEventSequence builds the default strategy.
func NewEventSequence(cfg Config, logger *zap.Logger) *EventSequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventSequence{cfg: cfg, logger: logger}
}

func (s *EventSequence) Deliver(ctx context.Context, input dom.Element, files []dom.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	input.SetFiles(files)
	if !input.Focused() {
		input.Focus()
	}

	input.Dispatch(dom.Event{Name: "input", Bubbles: true, Cancelable: true, TargetBound: true})
	input.Dispatch(dom.Event{Name: "change", Bubbles: true, Cancelable: true, TargetBound: true})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	input.Dispatch(dom.Event{
		Name:    SyntheticEventName,
		Bubbles: true,
		Detail:  map[string]any{"files": names, "synthetic": true},
	})

	// Delegation support: hosts that listen on a container instead of the
	// input itself still see a plain change. Body and above are excluded.
	for anc := input.Parent(); anc != nil && anc.TagName() != "body" && anc.TagName() != "html"; anc = anc.Parent() {
		anc.Dispatch(dom.Event{Name: "change", Bubbles: true})
	}

	if err := wait(ctx, s.cfg.BlurDelay); err != nil {
		return err
	}
	if input.Attached() && input.Focused() {
		input.Blur()
	}

	if err := wait(ctx, s.cfg.ProbeDelay); err != nil {
		return err
	}
	s.probeIndicators(input)
	return nil
}

// probeIndicators looks for the host's own upload-in-progress markers. Purely
// diagnostic: their absence does not prove the upload failed, so the result
// never gates success.
func (s *EventSequence) probeIndicators(input dom.Element) {
	if !input.Attached() {
		return
	}
	const indicatorXPath = `.//*[@role='progressbar'` +
		` or contains(@aria-label,'Remove')` +
		` or contains(@data-testid,'attachments')` +
		` or contains(@data-testid,'media')]`

	scope := input.Parent()
	for depth := 0; scope != nil && depth < 3; depth++ {
		if parent := scope.Parent(); parent != nil && parent.TagName() != "body" {
			scope = parent
		} else {
			break
		}
	}
	if scope == nil {
		return
	}
	if scope.Query(indicatorXPath) != nil {
		s.logger.Debug("upload indicator visible after dispatch")
	} else {
		s.logger.Debug("no upload indicator found after dispatch")
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
