// internal/dom/dom.go
package dom

import "math"

// Rect is an element's border box in viewport coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Center returns the geometric center of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Expanded returns a copy of the rectangle grown by slack on every edge.
func (r Rect) Expanded(slack float64) Rect {
	return Rect{X: r.X - slack, Y: r.Y - slack, Width: r.Width + 2*slack, Height: r.Height + 2*slack}
}

// DistanceTo returns the Euclidean distance between the centers of two rectangles.
func (r Rect) DistanceTo(o Rect) float64 {
	ax, ay := r.Center()
	bx, by := o.Center()
	return math.Hypot(ax-bx, ay-by)
}

// File is a binary payload assigned to a file input, mirroring the
// platform File object the host page's own handlers expect to see.
type File struct {
	Name string
	Type string
	Data []byte
}

// Event is a synthetic DOM event to be dispatched against an element.
type Event struct {
	Name       string
	Bubbles    bool
	Cancelable bool
	// TargetBound pins the event's target property to the dispatch element.
	// Some host frameworks read the target off the event object instead of
	// relying on ambient dispatch semantics.
	TargetBound bool
	Detail      map[string]any
}

// Element is the minimal view of a host-page node the heuristics need:
// ancestry, attributes, geometry, computed style, focus, files and events.
// Implementations must tolerate the underlying node disappearing at any
// moment; accessors on a detached node return zero values rather than panic.
type Element interface {
	// Attached reports whether the node is still part of the document.
	Attached() bool
	// TagName returns the lowercase tag name.
	TagName() string
	Attr(name string) string
	HasAttr(name string) bool
	Parent() Element
	Children() []Element
	// Rect returns the border box in viewport coordinates.
	Rect() Rect
	// Style returns the computed value for a CSS property, or "" if unknown.
	Style(prop string) string
	// Focused reports whether this element is the document's active element
	// or contains it.
	Focused() bool
	// Contains reports whether other is this element or a descendant of it.
	Contains(other Element) bool
	// Query and QueryAll evaluate an XPath expression relative to this node.
	Query(xpath string) Element
	QueryAll(xpath string) []Element

	SetFiles(files []File)
	Files() []File
	Dispatch(ev Event)
	Focus()
	Blur()
}

// Document is the opaque host-page tree the heuristics run against.
type Document interface {
	// ActiveElement returns the currently focused element, or nil.
	ActiveElement() Element
	// ElementFromPoint returns the topmost rendered element at the given
	// viewport coordinates, or nil.
	ElementFromPoint(x, y float64) Element
	Query(xpath string) Element
	QueryAll(xpath string) []Element
	// Viewport returns the visible viewport rectangle.
	Viewport() Rect
}

// Mutation is one batch of structural document changes.
type Mutation struct {
	Added   []Element
	Removed []Element
}

// MutationSource delivers child-list mutations to a subscriber. Attribute and
// character-data changes are not reported; the signal of interest is "a new
// subtree appeared" and anything finer would slow the observer down.
type MutationSource interface {
	// Subscribe registers fn and returns an unsubscribe function. Callbacks
	// run synchronously with the mutation and must return quickly.
	Subscribe(fn func(Mutation)) (unsubscribe func())
}
