// internal/composer/locator.go
package composer

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Selectors used across the discovery heuristics. All of them are XPath.
const (
	// composeSurfaceXPath matches every accepted input surface on the page.
	composeSurfaceXPath = `//*[@role='textbox' or @contenteditable='true' or @contenteditable='' or self::textarea or (self::input and (@type='text' or not(@type)))]`

	// composeSurfaceScopedXPath is the same match rooted at a container,
	// including the container itself.
	composeSurfaceScopedXPath = `descendant-or-self::*[@role='textbox' or @contenteditable='true' or @contenteditable='' or self::textarea or (self::input and (@type='text' or not(@type)))]`

	// modalContainerXPath matches the overlay surfaces the host raises above
	// the background content.
	modalContainerXPath = `//*[@role='dialog' or @aria-modal='true' or self::dialog or contains(@data-testid,'Modal') or contains(@data-testid,'Drawer')]`
)

// fallbackXPaths is the flat last-resort selector list, broadest first.
var fallbackXPaths = []string{
	`//*[@role='textbox']`,
	`//*[starts-with(@data-testid,'tweetTextarea')]`,
	`//*[contains(@data-testid,'dmComposerTextInput')]`,
	`//div[@contenteditable='true']`,
	`//textarea`,
	`//*[contains(@aria-label,'Post') or contains(@aria-label,'Tweet') or contains(@aria-label,'Reply')]`,
}

// Locator finds the single best "active" compose area in a document whose
// structure the host page mutates continuously. Nothing is cached across
// calls; every locate re-reads the live tree.
type Locator struct {
	doc       dom.Document
	watcher   *Watcher
	validator *Validator
	cfg       Config
	logger    *zap.Logger
}

// NewLocator builds a locator. watcher may be nil, in which case the
// recent-candidate tier is skipped.
func NewLocator(doc dom.Document, watcher *Watcher, cfg Config, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		doc:       doc,
		watcher:   watcher,
		validator: NewValidator(cfg, doc),
		cfg:       cfg,
		logger:    logger,
	}
}

// Validator exposes the locator's validator for collaborators that share its
// configuration.
func (l *Locator) Validator() *Validator { return l.validator }

// FindActiveComposeArea returns the best candidate editable region, or nil
// when the page has none. Strategies run in strict priority order and
// short-circuit on first success.
func (l *Locator) FindActiveComposeArea() dom.Element {
	// 1. Explicit user focus is the strongest possible signal of intent.
	if active := l.doc.ActiveElement(); active != nil && l.validator.IsValidComposeArea(active) {
		l.logger.Debug("compose area located via focus", zap.String("address", dom.UniqueXPath(active)))
		return active
	}

	// 2. Elements that just appeared (a reply box that opened) are likely
	// the target even before the user clicks into them.
	if l.watcher != nil {
		for _, cand := range l.watcher.Recent() {
			if !l.validator.IsValidComposeArea(cand) {
				continue
			}
			if score := l.validator.Score(cand); score >= l.cfg.HighConfidence {
				l.logger.Debug("compose area located via recent mutation",
					zap.Float64("score", score), zap.String("address", dom.UniqueXPath(cand)))
				return cand
			}
		}
	}

	// 3. A modal is, by construction, the page's current focal surface.
	for _, modal := range l.doc.QueryAll(modalContainerXPath) {
		for _, cand := range modal.QueryAll(composeSurfaceScopedXPath) {
			if l.validator.IsValidComposeArea(cand) && l.visuallyOnTop(cand) {
				l.logger.Debug("compose area located inside modal", zap.String("address", dom.UniqueXPath(cand)))
				return cand
			}
		}
	}

	// 4. Best-scored globally visible candidate. Strict comparison keeps the
	// first-discovered element on ties, so iteration order is stable.
	var best dom.Element
	bestScore := math.Inf(-1)
	for _, cand := range l.doc.QueryAll(composeSurfaceXPath) {
		if !l.validator.IsValidComposeArea(cand) {
			continue
		}
		if score := l.validator.Score(cand); score > bestScore {
			best, bestScore = cand, score
		}
	}
	if best != nil {
		l.logger.Debug("compose area located via scoring",
			zap.Float64("score", bestScore), zap.String("address", dom.UniqueXPath(best)))
		return best
	}

	// 5. Flat fallback list: first structurally usable match wins.
	for _, xp := range fallbackXPaths {
		for _, cand := range l.doc.QueryAll(xp) {
			if l.structurallyUsable(cand) {
				l.logger.Debug("compose area located via fallback selector", zap.String("xpath", xp))
				return cand
			}
		}
	}

	l.logger.Debug("no active compose area found")
	return nil
}

// visuallyOnTop confirms the candidate actually renders at its own center:
// the element the document reports at that point must be the candidate, a
// descendant of it, or an ancestor containing it. Purely geometric or
// z-index tests are insufficient because overlays frequently omit explicit
// z-index values.
func (l *Locator) visuallyOnTop(el dom.Element) bool {
	cx, cy := el.Rect().Center()
	hit := l.doc.ElementFromPoint(cx, cy)
	if hit == nil {
		return false
	}
	return el.Contains(hit) || hit.Contains(el)
}

// structurallyUsable is the relaxed check applied to fallback-selector
// matches: attached, enabled, and not hidden, without the geometry gates.
func (l *Locator) structurallyUsable(el dom.Element) bool {
	if el == nil || !el.Attached() {
		return false
	}
	if isDisabled(el) || el.HasAttr("readonly") {
		return false
	}
	return isRendered(el, l.cfg.OpacityFloor)
}

// ModalAncestor returns the nearest dialog/modal container enclosing el
// (possibly el itself), or nil.
func ModalAncestor(el dom.Element) dom.Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if IsModalContainer(cur) {
			return cur
		}
	}
	return nil
}

// IsModalContainer reports whether el carries a dialog/modal semantic marker.
func IsModalContainer(el dom.Element) bool {
	if el.Attr("role") == "dialog" || el.Attr("aria-modal") == "true" {
		return true
	}
	if el.TagName() == "dialog" {
		return true
	}
	testid := el.Attr("data-testid")
	return strings.Contains(testid, "Modal") || strings.Contains(testid, "Drawer")
}
