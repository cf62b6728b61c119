// internal/dom/xpath.go
package dom

import (
	"fmt"
	"strings"
)

// UniqueXPath builds an addressable XPath for an element, anchored on the
// nearest ancestor ID when one exists. The heuristics log it alongside every
// pick so a reported compose area or file input can be re-queried by hand.
func UniqueXPath(el Element) string {
	if el == nil {
		return ""
	}

	var path []string
	for n := el; n != nil; n = n.Parent() {
		tag := n.TagName()
		if tag == "" {
			continue
		}

		// An ID makes a stable absolute anchor; stop climbing there.
		if id := n.Attr("id"); id != "" {
			path = append(path, fmt.Sprintf(`//*[@id='%s']`, id))
			break
		}

		path = append(path, fmt.Sprintf("%s[%d]", tag, siblingIndex(n, tag)))
	}

	if len(path) == 0 {
		return "/"
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	xpath := strings.Join(path, "/")
	if !strings.HasPrefix(xpath, "//*[@id=") {
		xpath = "/" + xpath
	}
	return xpath
}

// siblingIndex returns the 1-based position of el among its parent's
// same-tag children. The document root has no element parent and is always
// position 1.
func siblingIndex(el Element, tag string) int {
	parent := el.Parent()
	if parent == nil {
		return 1
	}
	index := 0
	for _, sib := range parent.Children() {
		if sib.TagName() != tag {
			continue
		}
		index++
		if sameNode(sib, el) {
			return index
		}
	}
	return 1
}

// sameNode reports whether two handles address the same underlying node.
// Implementations may hand out fresh handles per query, so identity falls
// back to mutual containment, which only holds between a node and itself.
func sameNode(a, b Element) bool {
	if a == b {
		return true
	}
	return a.Contains(b) && b.Contains(a)
}
