// internal/composer/matcher.go
package composer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// File-input selectors, most to least specific. The host provides no declared
// association between a compose area and its upload input, so containment and
// proximity are the only available signals.
var fileInputScopedXPaths = []string{
	`.//input[@type='file' and contains(@accept,'image')]`,
	`.//input[@type='file']`,
	`.//input[contains(@accept,'image')]`,
}

const allFileInputsXPath = `//input[@type='file'] | //input[contains(@accept,'image')]`

// Matcher locates the file input most plausibly wired to a chosen compose
// area.
type Matcher struct {
	doc       dom.Document
	validator *Validator
	logger    *zap.Logger
}

// NewMatcher builds a matcher sharing the locator's validator.
func NewMatcher(doc dom.Document, validator *Validator, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{doc: doc, validator: validator, logger: logger}
}

// FindFileInputFor returns the best file input for the compose area, or nil.
//
// Tier 1 searches the compose area's modal container exclusively, so the file
// lands in the same visual surface the user is typing in — the classic
// failure mode is uploading into a hidden background composer instead of the
// visible modal one. Tier 2 walks structural containers of the compose area.
// Tier 3 falls back to global proximity, constrained to modal context when
// the compose area lives in one.
func (m *Matcher) FindFileInputFor(compose dom.Element) dom.Element {
	if compose == nil || !compose.Attached() {
		return nil
	}

	modal := ModalAncestor(compose)

	// Tier 1: modal-scoped search.
	if modal != nil {
		if input := m.searchContainer(modal); input != nil {
			m.logger.Debug("file input matched inside modal container")
			return input
		}
	}

	// Tier 2: container-hierarchy search. Containers outside the compose
	// area's modal are never searched, so a modal context cannot resolve to
	// a background input through a shared ancestor.
	for _, container := range m.containerChain(compose) {
		if modal != nil && !modal.Contains(container) {
			continue
		}
		if input := m.searchContainer(container); input != nil {
			m.logger.Debug("file input matched via container hierarchy",
				zap.String("container", container.TagName()))
			return input
		}
	}

	// Tier 3: global proximity fallback.
	return m.nearestGlobal(compose, modal != nil)
}

// searchContainer applies the selector priority list within one container.
func (m *Matcher) searchContainer(container dom.Element) dom.Element {
	for _, xp := range fileInputScopedXPaths {
		for _, cand := range container.QueryAll(xp) {
			if m.validator.IsValidFileInput(cand) {
				return cand
			}
		}
	}
	return nil
}

// containerChain returns the prioritized structural containers of the
// compose area: the toolbar's parent, the nearest post/compose-labeled
// ancestor, the nearest form, the nearest main-role container, then the
// direct parent and grandparent.
func (m *Matcher) containerChain(compose dom.Element) []dom.Element {
	var chain []dom.Element
	seen := map[dom.Element]bool{}
	add := func(el dom.Element) {
		if el == nil || seen[el] {
			return
		}
		// body and html are not containers in any useful sense; searching
		// them is a document-order global scan that bypasses proximity.
		if tag := el.TagName(); tag == "body" || tag == "html" {
			return
		}
		seen[el] = true
		chain = append(chain, el)
	}

	// The upload button usually sits in a toolbar near the composer; the
	// toolbar's parent is the tightest container that holds both.
	for anc := compose.Parent(); anc != nil; anc = anc.Parent() {
		if toolbar := anc.Query(`.//*[@data-testid='toolBar' or @role='toolbar']`); toolbar != nil {
			add(toolbar.Parent())
			break
		}
	}

	for anc := compose.Parent(); anc != nil; anc = anc.Parent() {
		if isComposeLabeled(anc) {
			add(anc)
			break
		}
	}
	for anc := compose.Parent(); anc != nil; anc = anc.Parent() {
		if anc.TagName() == "form" {
			add(anc)
			break
		}
	}
	for anc := compose.Parent(); anc != nil; anc = anc.Parent() {
		if anc.Attr("role") == "main" || anc.TagName() == "main" {
			add(anc)
			break
		}
	}

	add(compose.Parent())
	if p := compose.Parent(); p != nil {
		add(p.Parent())
	}
	return chain
}

func isComposeLabeled(el dom.Element) bool {
	marker := strings.ToLower(el.Attr("data-testid") + " " + el.Attr("aria-label"))
	for _, word := range []string{"tweet", "post", "compose", "reply"} {
		if strings.Contains(marker, word) {
			return true
		}
	}
	return false
}

// nearestGlobal enumerates every file input in the document and returns the
// valid one whose center is closest to the compose area's center. When the
// compose area is inside a modal, only inputs that are themselves inside
// some modal container qualify, so a modal context never leaks into an
// unrelated background input.
func (m *Matcher) nearestGlobal(compose dom.Element, composeInModal bool) dom.Element {
	composeRect := compose.Rect()

	var best dom.Element
	bestDist := 0.0
	for _, cand := range m.doc.QueryAll(allFileInputsXPath) {
		if !m.validator.IsValidFileInput(cand) {
			continue
		}
		if composeInModal && ModalAncestor(cand) == nil {
			continue
		}
		dist := composeRect.DistanceTo(cand.Rect())
		if best == nil || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if best != nil {
		m.logger.Debug("file input matched via proximity", zap.Float64("distance", bestDist))
	}
	return best
}
