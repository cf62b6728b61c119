// internal/composer/matcher_test.go
package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherPrefersModalScopedInput(t *testing.T) {
	// A closer-by-distance input exists outside the modal, but the modal's
	// own input must win: the file has to land in the surface the user sees.
	doc := fixture(t, `
		<html><body>
			<input id="outside" type="file" accept="image/*" style="left:210px; top:210px; width:10px; height:10px">
			<div role="dialog" style="left:100px; top:100px; width:800px; height:600px">
				<div id="box" role="textbox" style="left:200px; top:200px; width:500px; height:150px"></div>
				<div>
					<input id="inside" type="file" accept="image/*" style="left:5000px; top:200px; width:1px; height:1px">
				</div>
			</div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	got := m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`))
	require.NotNil(t, got)
	assert.Equal(t, "inside", got.Attr("id"))
}

func TestMatcherContainerHierarchy(t *testing.T) {
	// No modal anywhere; the input hangs off the toolbar's parent rather
	// than an ancestor of the compose area itself.
	doc := fixture(t, `
		<html><body>
			<div id="composer-root">
				<div>
					<div id="box" role="textbox" style="left:100px; top:100px; width:500px; height:150px"></div>
				</div>
				<div>
					<div data-testid="toolBar"></div>
					<input id="upload" type="file" accept="image/jpeg,image/png,image/webp,image/gif">
				</div>
			</div>
			<input id="far" type="file" accept="image/*">
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	got := m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`))
	require.NotNil(t, got)
	assert.Equal(t, "upload", got.Attr("id"))
}

func TestMatcherFormContainer(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<form>
				<div><textarea id="box" style="left:10px; top:10px; width:400px; height:100px"></textarea></div>
				<input id="upload" type="file">
			</form>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	got := m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`))
	require.NotNil(t, got)
	assert.Equal(t, "upload", got.Attr("id"))
}

func TestMatcherProximityFallback(t *testing.T) {
	// Inputs live in unrelated subtrees, so only global proximity is left;
	// the nearer one by center distance wins.
	doc := fixture(t, `
		<html><body>
			<section><div><div id="box" role="textbox" style="left:100px; top:100px; width:200px; height:100px"></div></div></section>
			<aside><input id="far" type="file" style="left:900px; top:700px; width:20px; height:20px"></aside>
			<aside><input id="near" type="file" style="left:300px; top:200px; width:20px; height:20px"></aside>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	got := m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`))
	require.NotNil(t, got)
	assert.Equal(t, "near", got.Attr("id"))
}

func TestMatcherModalContextNeverLeaks(t *testing.T) {
	// The compose area sits in a modal without any file input. The only
	// inputs on the page are background ones; crossing from a modal context
	// into the background is worse than failing.
	doc := fixture(t, `
		<html><body>
			<input id="bg" type="file" accept="image/*" style="left:120px; top:120px; width:10px; height:10px">
			<div role="dialog" style="left:100px; top:100px; width:800px; height:600px">
				<div id="box" role="textbox" style="left:110px; top:110px; width:500px; height:150px"></div>
			</div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	assert.Nil(t, m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`)))
}

func TestMatcherCrossModalFallbackAllowed(t *testing.T) {
	// With a modal compose area and no input in its own container chain, an
	// input inside some other modal surface is still acceptable.
	doc := fixture(t, `
		<html><body>
			<input id="bg" type="file" style="left:0px; top:0px; width:10px; height:10px">
			<div role="dialog" style="left:100px; top:100px; width:400px; height:300px">
				<div id="box" role="textbox" style="left:110px; top:110px; width:300px; height:100px"></div>
			</div>
			<div data-testid="AttachmentsModal" style="left:600px; top:100px; width:300px; height:300px">
				<input id="other-modal" type="file" style="left:610px; top:110px; width:10px; height:10px">
			</div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)
	m := NewMatcher(doc, v, nil)

	got := m.FindFileInputFor(doc.NodeFor(`//*[@id='box']`))
	require.NotNil(t, got)
	assert.Equal(t, "other-modal", got.Attr("id"))
}

func TestMatcherNilCompose(t *testing.T) {
	doc := fixture(t, `<html><body></body></html>`)
	m := NewMatcher(doc, NewValidator(DefaultConfig(), doc), nil)
	assert.Nil(t, m.FindFileInputFor(nil))
}
