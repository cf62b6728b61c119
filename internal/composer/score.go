// internal/composer/score.go
package composer

import (
	"math"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Score computes the SelectionScore for a candidate compose area. Higher
// wins; the value has no fixed scale, only relative ordering matters within
// one locate call.
func (v *Validator) Score(el dom.Element) float64 {
	w := v.cfg.Weights
	r := el.Rect()

	// Larger surfaces are more likely the main composer, but with
	// diminishing returns so a full-page editable region doesn't swamp
	// everything else.
	score := math.Min(r.Width, w.SizeCapPx)*w.SizePerPx +
		math.Min(r.Height, w.SizeCapPx)*w.SizePerPx

	if viewportContains(v.doc.Viewport(), r) {
		score += w.InViewport
	}
	if ModalAncestor(el) != nil {
		score += w.InModal
	}
	if el.Focused() {
		score += w.Focused
	}
	if isDisabled(el) || el.Style("pointer-events") == "none" {
		score += w.DisabledPenalty
	}
	return score
}

func viewportContains(vp dom.Rect, r dom.Rect) bool {
	return r.X >= vp.X && r.Y >= vp.Y &&
		r.X+r.Width <= vp.X+vp.Width &&
		r.Y+r.Height <= vp.Y+vp.Height
}
