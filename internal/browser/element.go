// internal/browser/element.go
package browser

import (
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// element is a live page node addressed by absolute XPath. Every accessor
// re-resolves the address in the page, so a node that disappears between
// calls degrades to zero values instead of erroring.
type element struct {
	page  *Page
	xpath string
	tag   string

	// files mirrors the last assignment; the bytes themselves live in the
	// page and cannot be read back across the protocol.
	files []dom.File
}

var _ dom.Element = (*element)(nil)

func (p *Page) elementFor(ref *nodeRef) *element {
	if ref == nil || ref.XPath == "" {
		return nil
	}
	return &element{page: p, xpath: ref.XPath, tag: ref.Tag}
}

func (e *element) Attached() bool {
	var ok bool
	e.eval(nodeOp(e.xpath, "false", "return document.contains(n);"), &ok)
	return ok
}

func (e *element) TagName() string { return e.tag }

func (e *element) Attr(name string) string {
	var v string
	e.eval(nodeOp(e.xpath, `""`, fmt.Sprintf("return n.getAttribute(%s) || '';", jsonEncode(name))), &v)
	return v
}

func (e *element) HasAttr(name string) bool {
	var ok bool
	e.eval(nodeOp(e.xpath, "false", fmt.Sprintf("return n.hasAttribute(%s);", jsonEncode(name))), &ok)
	return ok
}

func (e *element) Parent() dom.Element {
	var ref *nodeRef
	e.eval(nodeOp(e.xpath, "null", "return describe(n.parentElement);"), &ref)
	el := e.page.elementFor(ref)
	if el == nil {
		return nil
	}
	return el
}

func (e *element) Children() []dom.Element {
	var refs []nodeRef
	e.eval(nodeOp(e.xpath, "[]", "return Array.from(n.children).map(describe);"), &refs)
	return e.page.elements(refs)
}

func (e *element) Rect() dom.Rect {
	var r dom.Rect
	e.eval(nodeOp(e.xpath, "{}", `
const b = n.getBoundingClientRect();
return { X: b.x, Y: b.y, Width: b.width, Height: b.height };`), &r)
	return r
}

func (e *element) Style(prop string) string {
	var v string
	e.eval(nodeOp(e.xpath, `""`,
		fmt.Sprintf("return getComputedStyle(n).getPropertyValue(%s);", jsonEncode(prop))), &v)
	return v
}

func (e *element) Focused() bool {
	var ok bool
	e.eval(nodeOp(e.xpath, "false",
		"return n === document.activeElement || n.contains(document.activeElement);"), &ok)
	return ok
}

func (e *element) Contains(other dom.Element) bool {
	o, ok := other.(*element)
	if !ok || o == nil {
		return false
	}
	if o.xpath == e.xpath {
		return true
	}
	var res bool
	e.eval(nodeOp(e.xpath, "false", fmt.Sprintf(`
const o = resolve(%s);
return !!o && n.contains(o);`, jsonEncode(o.xpath))), &res)
	return res
}

func (e *element) Query(xpath string) dom.Element {
	els := e.QueryAll(xpath)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

func (e *element) QueryAll(xpath string) []dom.Element {
	var refs []nodeRef
	e.eval(nodeOp(e.xpath, "[]", fmt.Sprintf(`
const out = [];
try {
	const it = document.evaluate(%s, n, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (let i = 0; i < it.snapshotLength; i++) {
		const m = it.snapshotItem(i);
		if (m.nodeType === 1) out.push(describe(m));
	}
} catch (err) {}
return out;`, jsonEncode(relativeXPath(xpath)))), &refs)
	return e.page.elements(refs)
}

// relativeXPath anchors a bare descendant expression to the context node.
// document.evaluate treats a leading "//" as document-rooted even with a
// context node, which is never what a scoped query wants.
func relativeXPath(xpath string) string {
	if strings.HasPrefix(xpath, "//") {
		return "." + xpath
	}
	return xpath
}

func (e *element) SetFiles(files []dom.File) {
	args := make([]fileArg, 0, len(files))
	for _, f := range files {
		args = append(args, fileArg{
			Name: f.Name,
			Type: f.Type,
			B64:  base64.StdEncoding.EncodeToString(f.Data),
		})
	}
	var n int
	e.eval(setFilesScript(e.xpath, args), &n)
	if n >= 0 {
		e.files = files
	}
}

func (e *element) Files() []dom.File { return e.files }

func (e *element) Dispatch(ev dom.Event) {
	var ok bool
	e.eval(dispatchScript(e.xpath, ev.Name, ev.Bubbles, ev.Cancelable, ev.TargetBound, ev.Detail), &ok)
}

func (e *element) Focus() {
	e.eval(nodeOp(e.xpath, "false", "n.focus(); return true;"), nil)
}

func (e *element) Blur() {
	e.eval(nodeOp(e.xpath, "false", "n.blur(); return true;"), nil)
}

// eval runs the script and swallows transport errors; a node the page lost
// behaves exactly like a detached one.
func (e *element) eval(script string, res any) {
	if err := e.page.session.Eval(script, res); err != nil {
		e.page.logger.Debug("Page operation failed.", zap.Error(err), zap.String("xpath", e.xpath))
	}
}
