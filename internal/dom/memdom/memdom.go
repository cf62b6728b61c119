// internal/dom/memdom/memdom.go
//
// Package memdom is an in-memory dom.Document implementation over parsed
// HTML. Geometry and computed style come from inline style declarations,
// which is enough to model the host page's layout for the discovery
// heuristics without a layout engine. It doubles as the test fixture for
// everything that consumes dom.Document.
package memdom

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Dispatched is one recorded synthetic event, in global dispatch order.
type Dispatched struct {
	Target *Node
	Event  dom.Event
}

// Document is a mutable, thread-safe in-memory document.
type Document struct {
	mu       sync.RWMutex
	htmlDoc  *html.Node
	nodes    map[*html.Node]*Node
	active   *Node
	viewport dom.Rect

	subMu   sync.Mutex
	subs    map[int]func(dom.Mutation)
	nextSub int

	log []Dispatched
}

// Node wraps a single element node.
type Node struct {
	doc      *Document
	hn       *html.Node
	rect     dom.Rect
	rectSet  bool
	styles   map[string]string
	files    []dom.File
	detached bool
}

var (
	_ dom.Document       = (*Document)(nil)
	_ dom.Element        = (*Node)(nil)
	_ dom.MutationSource = (*Document)(nil)
)

// Parse builds a document from an HTML string. Element geometry is read from
// inline left/top/width/height declarations; everything else defaults to a
// rendered, visible element.
func Parse(src string, viewport dom.Rect) (*Document, error) {
	root, err := htmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &Document{
		htmlDoc:  root,
		nodes:    make(map[*html.Node]*Node),
		viewport: viewport,
		subs:     make(map[int]func(dom.Mutation)),
	}
	d.adoptSubtree(root)
	return d, nil
}

// MustParse is Parse for fixtures that are known-good.
func MustParse(src string, viewport dom.Rect) *Document {
	d, err := Parse(src, viewport)
	if err != nil {
		panic(err)
	}
	return d
}

// adoptSubtree creates Node wrappers for every element under hn.
// Caller holds the write lock (or is the constructor).
func (d *Document) adoptSubtree(hn *html.Node) []*Node {
	var added []*Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			node := &Node{doc: d, hn: n, styles: parseInlineStyle(htmlquery.SelectAttr(n, "style"))}
			if r, ok := rectFromStyles(node.styles); ok {
				node.rect = r
				node.rectSet = true
			}
			d.nodes[n] = node
			added = append(added, node)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(hn)
	return added
}

// parseInlineStyle splits "a: b; c: d" into a property map.
func parseInlineStyle(style string) map[string]string {
	m := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		m[strings.ToLower(strings.TrimSpace(prop))] = strings.TrimSpace(val)
	}
	return m
}

func rectFromStyles(styles map[string]string) (dom.Rect, bool) {
	px := func(prop string) (float64, bool) {
		v, ok := styles[prop]
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
		return f, err == nil
	}
	w, wok := px("width")
	h, hok := px("height")
	if !wok && !hok {
		return dom.Rect{}, false
	}
	x, _ := px("left")
	y, _ := px("top")
	return dom.Rect{X: x, Y: y, Width: w, Height: h}, true
}

// -- Document interface --

func (d *Document) ActiveElement() dom.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.elem(d.active)
}

func (d *Document) Viewport() dom.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

func (d *Document) Query(xpath string) dom.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hn, err := htmlquery.QueryAll(d.htmlDoc, xpath)
	if err != nil || len(hn) == 0 {
		return nil
	}
	return d.elem(d.nodes[hn[0]])
}

func (d *Document) QueryAll(xpath string) []dom.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.queryAllLocked(d.htmlDoc, xpath)
}

func (d *Document) queryAllLocked(scope *html.Node, xpath string) []dom.Element {
	found, err := htmlquery.QueryAll(scope, xpath)
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(found))
	for _, hn := range found {
		if n, ok := d.nodes[hn]; ok && !n.detached {
			out = append(out, n)
		}
	}
	return out
}

// ElementFromPoint returns the topmost rendered element containing the point.
// Paint order is modelled as explicit z-index first, then document order:
// later nodes paint above earlier ones, which is how the host page stacks its
// overlays when no z-index is declared.
func (d *Document) ElementFromPoint(x, y float64) dom.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var best *Node
	bestZ, bestOrder := 0, -1
	order := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			order++
			node := d.nodes[n]
			if node != nil && !node.detached && node.renderedLocked() && node.rect.Contains(x, y) {
				z := node.zIndexLocked()
				if best == nil || z > bestZ || (z == bestZ && order > bestOrder) {
					best, bestZ, bestOrder = node, z, order
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.htmlDoc)
	return d.elem(best)
}

// elem avoids a typed-nil dom.Element escaping from a nil *Node.
func (d *Document) elem(n *Node) dom.Element {
	if n == nil {
		return nil
	}
	return n
}

// -- Mutation API --

// AppendHTML parses a fragment, attaches it under parent and notifies
// subscribers with the newly created elements.
func (d *Document) AppendHTML(parent *Node, fragment string) ([]*Node, error) {
	frag, err := html.ParseFragment(strings.NewReader(fragment), parent.hn)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	d.mu.Lock()
	var added []*Node
	for _, hn := range frag {
		parent.hn.AppendChild(hn)
		added = append(added, d.adoptSubtree(hn)...)
	}
	d.mu.Unlock()

	elems := make([]dom.Element, len(added))
	for i, n := range added {
		elems[i] = n
	}
	d.notify(dom.Mutation{Added: elems})
	return added, nil
}

// Remove detaches a subtree and notifies subscribers.
func (d *Document) Remove(node *Node) {
	d.mu.Lock()
	if node.detached {
		d.mu.Unlock()
		return
	}
	var removed []dom.Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if sub, ok := d.nodes[n]; ok {
			sub.detached = true
			removed = append(removed, sub)
			if d.active == sub {
				d.active = nil
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node.hn)
	if node.hn.Parent != nil {
		node.hn.Parent.RemoveChild(node.hn)
	}
	d.mu.Unlock()
	d.notify(dom.Mutation{Removed: removed})
}

// Subscribe implements dom.MutationSource.
func (d *Document) Subscribe(fn func(dom.Mutation)) func() {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		delete(d.subs, id)
	}
}

func (d *Document) notify(m dom.Mutation) {
	d.subMu.Lock()
	fns := make([]func(dom.Mutation), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()
	for _, fn := range fns {
		fn(m)
	}
}

// -- Test and fixture helpers --

// DispatchLog returns all synthetic events recorded so far, in dispatch order.
func (d *Document) DispatchLog() []Dispatched {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Dispatched, len(d.log))
	copy(out, d.log)
	return out
}

// NodeFor returns the wrapper for the first match of an XPath expression.
func (d *Document) NodeFor(xpath string) *Node {
	el := d.Query(xpath)
	if el == nil {
		return nil
	}
	return el.(*Node)
}

// SetFocusByXPath focuses the first match, for fixture setup.
func (d *Document) SetFocusByXPath(xpath string) *Node {
	n := d.NodeFor(xpath)
	if n != nil {
		n.Focus()
	}
	return n
}

// -- Element interface --

func (n *Node) Attached() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return !n.detached
}

func (n *Node) TagName() string { return strings.ToLower(n.hn.Data) }

func (n *Node) Attr(name string) string { return htmlquery.SelectAttr(n.hn, name) }

func (n *Node) HasAttr(name string) bool {
	for _, a := range n.hn.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func (n *Node) Parent() dom.Element {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	for p := n.hn.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return n.doc.elem(n.doc.nodes[p])
		}
	}
	return nil
}

func (n *Node) Children() []dom.Element {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	var out []dom.Element
	for c := n.hn.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if node, ok := n.doc.nodes[c]; ok && !node.detached {
				out = append(out, node)
			}
		}
	}
	return out
}

func (n *Node) Rect() dom.Rect {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.rect
}

// SetRect overrides the element geometry, for fixtures and live adapters.
func (n *Node) SetRect(r dom.Rect) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.rect = r
	n.rectSet = true
}

// Style returns the computed value for prop. Unspecified properties resolve
// to rendered-element defaults, matching getComputedStyle behavior.
func (n *Node) Style(prop string) string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.styleLocked(prop)
}

func (n *Node) styleLocked(prop string) string {
	if v, ok := n.styles[prop]; ok {
		return v
	}
	switch prop {
	case "display":
		return "block"
	case "visibility":
		return "visible"
	case "opacity":
		return "1"
	case "pointer-events":
		return "auto"
	default:
		return ""
	}
}

// SetStyle overrides a computed style value, for fixtures.
func (n *Node) SetStyle(prop, val string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.styles[strings.ToLower(prop)] = val
	if r, ok := rectFromStyles(n.styles); ok {
		n.rect = r
		n.rectSet = true
	}
}

func (n *Node) renderedLocked() bool {
	if n.styleLocked("display") == "none" {
		return false
	}
	switch n.styleLocked("visibility") {
	case "hidden", "collapse":
		return false
	}
	if op, err := strconv.ParseFloat(n.styleLocked("opacity"), 64); err == nil && op <= 0 {
		return false
	}
	return n.rect.Width > 0 && n.rect.Height > 0
}

func (n *Node) zIndexLocked() int {
	z, err := strconv.Atoi(n.styleLocked("z-index"))
	if err != nil {
		return 0
	}
	return z
}

func (n *Node) Focused() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.doc.active != nil && n.containsLocked(n.doc.active)
}

func (n *Node) Contains(other dom.Element) bool {
	o, ok := other.(*Node)
	if !ok || o == nil {
		return false
	}
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.containsLocked(o)
}

func (n *Node) containsLocked(o *Node) bool {
	for hn := o.hn; hn != nil; hn = hn.Parent {
		if hn == n.hn {
			return true
		}
	}
	return false
}

func (n *Node) Query(xpath string) dom.Element {
	all := n.QueryAll(xpath)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func (n *Node) QueryAll(xpath string) []dom.Element {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.doc.queryAllLocked(n.hn, xpath)
}

func (n *Node) SetFiles(files []dom.File) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.files = append([]dom.File(nil), files...)
}

func (n *Node) Files() []dom.File {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return append([]dom.File(nil), n.files...)
}

func (n *Node) Dispatch(ev dom.Event) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.doc.log = append(n.doc.log, Dispatched{Target: n, Event: ev})
}

func (n *Node) Focus() {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if !n.detached {
		n.doc.active = n
	}
}

func (n *Node) Blur() {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.doc.active == n {
		n.doc.active = nil
	}
}
