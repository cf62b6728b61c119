// internal/composer/locator_test.go
package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorPrefersFocusedElement(t *testing.T) {
	// A bigger, better-scored candidate exists, but explicit user focus on a
	// background composer wins over everything.
	doc := fixture(t, `
		<html><body>
			<div id="big" role="textbox" style="left:100px; top:100px; width:600px; height:300px"></div>
			<div id="small" role="textbox" style="left:100px; top:500px; width:400px; height:60px"></div>
		</body></html>`)
	doc.SetFocusByXPath(`//*[@id='small']`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "small", got.Attr("id"))
}

func TestLocatorIgnoresInvalidFocusedElement(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<input id="search" type="text" aria-label="Search" style="left:10px; top:10px; width:300px; height:40px">
			<div id="composer" role="textbox" style="left:100px; top:100px; width:600px; height:200px"></div>
		</body></html>`)
	doc.SetFocusByXPath(`//*[@id='search']`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "composer", got.Attr("id"))
}

func TestLocatorPrefersModalComposer(t *testing.T) {
	// Background composer is geometrically present but the dialog paints on
	// top of it; the locator must return the modal one.
	doc := fixture(t, `
		<html><body>
			<div id="bg" role="textbox" style="left:100px; top:100px; width:600px; height:200px"></div>
			<div role="dialog" style="left:50px; top:50px; width:800px; height:600px">
				<div id="modal-box" role="textbox" style="left:100px; top:100px; width:600px; height:200px"></div>
			</div>
		</body></html>`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "modal-box", got.Attr("id"))
}

func TestLocatorSkipsObscuredModalCandidate(t *testing.T) {
	// Two stacked dialogs occupy the same area. The buried one is
	// geometrically present but obscured; the visually-on-top test rejects
	// it and the composer of the topmost dialog is returned.
	doc := fixture(t, `
		<html><body>
			<div role="dialog" style="left:50px; top:50px; width:800px; height:600px">
				<div id="buried" role="textbox" style="left:100px; top:100px; width:600px; height:200px"></div>
			</div>
			<div role="dialog" style="left:50px; top:50px; width:800px; height:600px">
				<div id="front" role="textbox" style="left:100px; top:100px; width:600px; height:200px"></div>
			</div>
		</body></html>`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "front", got.Attr("id"))
}

func TestLocatorScoresGlobalCandidates(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="tiny" role="textbox" style="left:10px; top:10px; width:120px; height:30px"></div>
			<div id="main" role="textbox" style="left:100px; top:100px; width:600px; height:160px"></div>
			<div id="offscreen" role="textbox" style="left:20px; top:760px; width:600px; height:160px"></div>
		</body></html>`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "main", got.Attr("id"))
}

func TestLocatorUsesRecentCandidates(t *testing.T) {
	doc := fixture(t, `<html><body><div id="host"></div></body></html>`)
	cfg := DefaultConfig()

	l := NewLocator(doc, nil, cfg, nil)
	w := NewWatcher(doc, l.Validator(), cfg, nil)
	require.NoError(t, w.Start())
	defer w.Stop()
	l.watcher = w

	// Nothing on the page yet.
	assert.Nil(t, l.FindActiveComposeArea())

	// A reply box opens; the mutation-observed candidate is returned even
	// though nothing is focused.
	host := doc.NodeFor(`//*[@id='host']`)
	_, err := doc.AppendHTML(host,
		`<div id="reply" role="textbox" style="left:100px; top:100px; width:600px; height:160px"></div>`)
	require.NoError(t, err)

	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "reply", got.Attr("id"))
}

func TestLocatorFallbackSelectors(t *testing.T) {
	// No candidate passes the strict geometric validation (no declared
	// geometry at all), so the flat selector list is the last resort.
	doc := fixture(t, `
		<html><body>
			<div id="ce" contenteditable="true" data-testid="tweetTextarea_0"></div>
		</body></html>`)

	l := NewLocator(doc, nil, DefaultConfig(), nil)
	got := l.FindActiveComposeArea()
	require.NotNil(t, got)
	assert.Equal(t, "ce", got.Attr("id"))
}

func TestLocatorReturnsNilWhenPageHasNoComposer(t *testing.T) {
	doc := fixture(t, `<html><body><p>just text</p><button>ok</button></body></html>`)
	l := NewLocator(doc, nil, DefaultConfig(), nil)
	assert.Nil(t, l.FindActiveComposeArea())
}

func TestSelectionScoreOrdering(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="plain" role="textbox" style="left:100px; top:100px; width:600px; height:160px"></div>
			<div role="dialog" style="left:0px; top:0px; width:900px; height:700px">
				<div id="modal" role="textbox" style="left:100px; top:400px; width:600px; height:160px"></div>
			</div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	plain := doc.NodeFor(`//*[@id='plain']`)
	modal := doc.NodeFor(`//*[@id='modal']`)
	assert.Greater(t, v.Score(modal), v.Score(plain))

	// Focus is the single largest bonus and flips the ordering.
	plain.Focus()
	assert.Greater(t, v.Score(plain), v.Score(modal))
}

func TestModalAncestor(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="plain"><div id="inner1"></div></div>
			<div id="dlg" role="dialog"><div><div id="inner2"></div></div></div>
			<div id="drawer" data-testid="DMDrawer"><div id="inner3"></div></div>
		</body></html>`)

	assert.Nil(t, ModalAncestor(doc.NodeFor(`//*[@id='inner1']`)))

	m := ModalAncestor(doc.NodeFor(`//*[@id='inner2']`))
	require.NotNil(t, m)
	assert.Equal(t, "dlg", m.Attr("id"))

	m = ModalAncestor(doc.NodeFor(`//*[@id='inner3']`))
	require.NotNil(t, m)
	assert.Equal(t, "drawer", m.Attr("id"))
}
