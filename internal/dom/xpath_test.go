// internal/dom/xpath_test.go
package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
	"github.com/mintfeed/mintfeed-cli/internal/dom/memdom"
)

var testViewport = dom.Rect{Width: 1280, Height: 800}

func TestUniqueXPathAnchorsOnOwnID(t *testing.T) {
	doc := memdom.MustParse(`<body><div id="composer"><textarea></textarea></div></body>`, testViewport)

	el := doc.Query(`//div[@id='composer']`)
	require.NotNil(t, el)
	assert.Equal(t, `//*[@id='composer']`, dom.UniqueXPath(el))
}

func TestUniqueXPathAnchorsOnNearestAncestorID(t *testing.T) {
	doc := memdom.MustParse(`<body><div id="modal"><div><textarea></textarea></div></div></body>`, testViewport)

	el := doc.Query(`//textarea`)
	require.NotNil(t, el)
	assert.Equal(t, `//*[@id='modal']/div[1]/textarea[1]`, dom.UniqueXPath(el))
}

func TestUniqueXPathIndexesSameTagSiblings(t *testing.T) {
	doc := memdom.MustParse(
		`<body><div></div><div><span></span><input type="text"/><span></span></div></body>`, testViewport)

	input := doc.Query(`//input`)
	require.NotNil(t, input)
	assert.Equal(t, `/html[1]/body[1]/div[2]/input[1]`, dom.UniqueXPath(input))

	spans := doc.QueryAll(`//span`)
	require.Len(t, spans, 2)
	assert.Equal(t, `/html[1]/body[1]/div[2]/span[2]`, dom.UniqueXPath(spans[1]))
}

func TestUniqueXPathRoundTrips(t *testing.T) {
	doc := memdom.MustParse(
		`<body><section><div><input type="file"/></div><div><input type="file"/></div></section></body>`, testViewport)

	for _, el := range doc.QueryAll(`//input`) {
		xp := dom.UniqueXPath(el)
		resolved := doc.Query(xp)
		require.NotNil(t, resolved, xp)
		assert.True(t, resolved == el, "round-trip through %s lost the node", xp)
	}
}

func TestUniqueXPathNil(t *testing.T) {
	assert.Equal(t, "", dom.UniqueXPath(nil))
}
