// internal/composer/validate.go
package composer

import (
	"strconv"
	"strings"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Validator holds the pure predicates that decide whether a host-page node is
// a legitimate, interactable compose area or file input. The predicates never
// panic and answer false on any uncertain input: a detached node, missing
// style information, a malformed attribute.
type Validator struct {
	cfg Config
	doc dom.Document
}

// NewValidator builds a validator bound to a document (for viewport checks).
func NewValidator(cfg Config, doc dom.Document) *Validator {
	return &Validator{cfg: cfg, doc: doc}
}

// excludedPurposes are accessible-label / test-identifier fragments marking
// input surfaces the host page builds from the same generic widgets but which
// are never a post composer.
var excludedPurposes = []string{
	"search",
	"username",
	"password",
	"sign in",
	"login",
	"email",
}

// IsValidComposeArea reports whether el is a visible, interactable editable
// region a user could be composing a post in.
func (v *Validator) IsValidComposeArea(el dom.Element) bool {
	if el == nil || !el.Attached() {
		return false
	}
	if isDisabled(el) || el.HasAttr("readonly") {
		return false
	}
	if !isRendered(el, v.cfg.OpacityFloor) {
		return false
	}
	if el.Style("pointer-events") == "none" {
		return false
	}

	r := el.Rect()
	if r.Width < v.cfg.MinComposeWidth || r.Height < v.cfg.MinComposeHeight {
		return false
	}
	if !r.Intersects(v.doc.Viewport().Expanded(v.cfg.ViewportSlack)) {
		return false
	}

	if !IsComposeSurface(el) {
		return false
	}

	// The host reuses role=textbox and contenteditable across search boxes
	// and credential fields; the accessible label disambiguates.
	purpose := strings.ToLower(strings.Join([]string{
		el.Attr("aria-label"),
		el.Attr("data-testid"),
		el.Attr("placeholder"),
		el.Attr("name"),
	}, " "))
	for _, word := range excludedPurposes {
		if strings.Contains(purpose, word) {
			return false
		}
	}
	return true
}

// IsValidFileInput reports whether el is a file input the host's upload
// pipeline would accept an image through. Hosts usually position the real
// input off-screen, so geometry is deliberately not checked here; only
// display/visibility hiding disqualifies it.
func (v *Validator) IsValidFileInput(el dom.Element) bool {
	if el == nil || !el.Attached() {
		return false
	}
	if el.TagName() != "input" || !strings.EqualFold(el.Attr("type"), "file") {
		return false
	}
	if el.Style("display") == "none" {
		return false
	}
	switch el.Style("visibility") {
	case "hidden", "collapse":
		return false
	}

	accept := strings.ToLower(el.Attr("accept"))
	return accept == "" || strings.Contains(accept, "image") || strings.Contains(accept, "*")
}

// IsComposeSurface reports whether el is one of the accepted input surfaces:
// role=textbox, contenteditable, a textarea, or a text input.
func IsComposeSurface(el dom.Element) bool {
	if el.Attr("role") == "textbox" {
		return true
	}
	if el.HasAttr("contenteditable") {
		switch strings.ToLower(strings.TrimSpace(el.Attr("contenteditable"))) {
		case "true", "":
			return true
		}
	}
	switch el.TagName() {
	case "textarea":
		return true
	case "input":
		t := strings.ToLower(el.Attr("type"))
		return t == "" || t == "text"
	}
	return false
}

func isDisabled(el dom.Element) bool {
	return el.HasAttr("disabled") || el.Attr("aria-disabled") == "true"
}

// isRendered checks display, visibility and opacity. Missing style
// information counts as not rendered: a node we cannot reason about is not a
// node we should inject into.
func isRendered(el dom.Element, opacityFloor float64) bool {
	display := el.Style("display")
	if display == "" || display == "none" {
		return false
	}
	switch el.Style("visibility") {
	case "hidden", "collapse":
		return false
	}
	opacity, err := strconv.ParseFloat(el.Style("opacity"), 64)
	if err != nil || opacity <= opacityFloor {
		return false
	}
	return true
}
