// internal/browser/js.go
package browser

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonEncode marshals v into a JSON literal safe to splice into a script.
// Strings come out quoted and escaped, so the page can never break out of
// the expression.
func jsonEncode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// jsHelpers is prepended to every snippet that needs to hand a node back to
// the Go side. Nodes cross the protocol boundary as absolute XPath
// addresses; xpathOf builds one with positional predicates so it stays
// unambiguous, and resolve turns one back into a node.
const jsHelpers = `
function xpathOf(n) {
	if (!n || n.nodeType !== 1) return "";
	if (n === document.documentElement) return "/html";
	const parts = [];
	for (; n && n.nodeType === 1; n = n.parentNode) {
		let i = 1;
		for (let s = n.previousSibling; s; s = s.previousSibling) {
			if (s.nodeType === 1 && s.nodeName === n.nodeName) i++;
		}
		parts.unshift(n.nodeName.toLowerCase() + "[" + i + "]");
	}
	return "/" + parts.join("/");
}
function resolve(xp) {
	if (!xp) return null;
	try {
		return document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	} catch (e) {
		return null;
	}
}
function describe(n) {
	return n ? { xpath: xpathOf(n), tag: n.nodeName.toLowerCase() } : null;
}
`

// nodeRef is the wire shape a page-side node comes back in.
type nodeRef struct {
	XPath string `json:"xpath"`
	Tag   string `json:"tag"`
}

// iife wraps a snippet body into an immediately invoked expression with the
// shared helpers in scope.
func iife(body string) string {
	var b strings.Builder
	b.WriteString("(() => {")
	b.WriteString(jsHelpers)
	b.WriteString(body)
	b.WriteString("})()")
	return b.String()
}

// nodeOp wraps a snippet body that operates on one resolved node. The body
// sees the node as `n`; when the node is gone the expression yields zero
// instead of running the body.
func nodeOp(xpath, zero, body string) string {
	return iife(fmt.Sprintf(`
const n = resolve(%s);
if (!n) return %s;
%s`, jsonEncode(xpath), zero, body))
}

// dispatchScript builds the event construction and dispatch for one
// synthetic event. Events with a detail payload go out as CustomEvent so
// page handlers can read it; target binding pins ev.target ahead of
// dispatch for frameworks that read it off the object directly.
func dispatchScript(xpath, name string, bubbles, cancelable, targetBound bool, detail map[string]any) string {
	var body strings.Builder
	opts := fmt.Sprintf("{ bubbles: %t, cancelable: %t", bubbles, cancelable)
	if detail != nil {
		fmt.Fprintf(&body, "const ev = new CustomEvent(%s, %s, detail: %s });\n",
			jsonEncode(name), opts, jsonEncode(detail))
	} else {
		fmt.Fprintf(&body, "const ev = new Event(%s, %s });\n", jsonEncode(name), opts)
	}
	if targetBound {
		body.WriteString("try { Object.defineProperty(ev, 'target', { value: n, enumerable: true }); } catch (e) {}\n")
	}
	body.WriteString("n.dispatchEvent(ev);\nreturn true;")
	return nodeOp(xpath, "false", body.String())
}

// setFilesScript ships the payload bytes into the page as base64 and
// assigns them to the input through a DataTransfer, which is the only way
// script can populate input.files.
func setFilesScript(xpath string, files []fileArg) string {
	var body strings.Builder
	body.WriteString("const dt = new DataTransfer();\n")
	for _, f := range files {
		fmt.Fprintf(&body, `{
	const raw = atob(%s);
	const bytes = new Uint8Array(raw.length);
	for (let i = 0; i < raw.length; i++) bytes[i] = raw.charCodeAt(i);
	dt.items.add(new File([bytes], %s, { type: %s }));
}
`, jsonEncode(f.B64), jsonEncode(f.Name), jsonEncode(f.Type))
	}
	body.WriteString("n.files = dt.files;\nreturn n.files.length;")
	return nodeOp(xpath, "-1", body.String())
}

type fileArg struct {
	Name string
	Type string
	B64  string
}

// observerScript installs a MutationObserver once per page. Added element
// nodes are queued with their XPath; removed nodes are detached by the time
// the observer fires, so only their tag survives.
const observerScript = `(() => {
	if (window.__mintfeedMutations) return true;
	window.__mintfeedMutations = [];
	` + jsHelpers + `
	const ob = new MutationObserver((muts) => {
		const q = window.__mintfeedMutations;
		for (const m of muts) {
			for (const n of m.addedNodes) {
				if (n.nodeType === 1) q.push({ kind: "added", xpath: xpathOf(n), tag: n.nodeName.toLowerCase() });
			}
			for (const n of m.removedNodes) {
				if (n.nodeType === 1) q.push({ kind: "removed", xpath: "", tag: n.nodeName.toLowerCase() });
			}
		}
		if (q.length > 2000) q.splice(0, q.length - 2000);
	});
	ob.observe(document.documentElement, { childList: true, subtree: true });
	return true;
})()`

// drainMutationsScript empties the page-side queue.
const drainMutationsScript = `(() => {
	const q = window.__mintfeedMutations;
	if (!q || q.length === 0) return [];
	return q.splice(0, q.length);
})()`

// mutationRecord is the wire shape of one queued observer entry.
type mutationRecord struct {
	Kind  string `json:"kind"`
	XPath string `json:"xpath"`
	Tag   string `json:"tag"`
}
