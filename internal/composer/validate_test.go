// internal/composer/validate_test.go
package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
	"github.com/mintfeed/mintfeed-cli/internal/dom/memdom"
)

var testViewport = dom.Rect{Width: 1280, Height: 800}

func fixture(t *testing.T, src string) *memdom.Document {
	t.Helper()
	doc, err := memdom.Parse(src, testViewport)
	require.NoError(t, err)
	return doc
}

func TestComposeValidatorAcceptsSurfaces(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="rich" role="textbox" style="left:100px; top:100px; width:500px; height:120px"></div>
			<div id="ce" contenteditable="true" style="left:100px; top:300px; width:500px; height:120px"></div>
			<textarea id="ta" style="left:100px; top:500px; width:500px; height:120px"></textarea>
			<input id="txt" type="text" style="left:100px; top:700px; width:300px; height:40px">
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	for _, id := range []string{"rich", "ce", "ta", "txt"} {
		assert.True(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='`+id+`']`)), id)
	}
}

func TestComposeValidatorRejectsDetached(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="box" role="textbox" style="left:10px; top:10px; width:500px; height:100px"></div>
			<input id="file" type="file">
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	box := doc.NodeFor(`//*[@id='box']`)
	file := doc.NodeFor(`//*[@id='file']`)
	require.True(t, v.IsValidComposeArea(box))
	require.True(t, v.IsValidFileInput(file))

	doc.Remove(box)
	doc.Remove(file)
	assert.False(t, v.IsValidComposeArea(box))
	assert.False(t, v.IsValidFileInput(file))
	assert.False(t, v.IsValidComposeArea(nil))
	assert.False(t, v.IsValidFileInput(nil))
}

func TestComposeValidatorDimensionFloor(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<div id="thin" role="textbox" style="left:10px; top:10px; width:500px; height:4px"></div>
			<div id="narrow" role="textbox" style="left:10px; top:50px; width:8px; height:100px"></div>
			<div id="zero" role="textbox"></div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	// Below the pixel floor on either axis is rejected regardless of other
	// attributes.
	assert.False(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='thin']`)))
	assert.False(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='narrow']`)))
	assert.False(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='zero']`)))
}

func TestComposeValidatorStateAndStyleGates(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<textarea id="disabled" disabled style="left:10px; top:10px; width:500px; height:100px"></textarea>
			<textarea id="readonly" readonly style="left:10px; top:150px; width:500px; height:100px"></textarea>
			<div id="aria" role="textbox" aria-disabled="true" style="left:10px; top:300px; width:500px; height:100px"></div>
			<div id="hidden" role="textbox" style="left:10px; top:450px; width:500px; height:100px; display:none"></div>
			<div id="invis" role="textbox" style="left:10px; top:450px; width:500px; height:100px; visibility:hidden"></div>
			<div id="clear" role="textbox" style="left:10px; top:450px; width:500px; height:100px; opacity:0"></div>
			<div id="faint" role="textbox" style="left:10px; top:450px; width:500px; height:100px; opacity:0.2"></div>
			<div id="noptr" role="textbox" style="left:10px; top:600px; width:500px; height:100px; pointer-events:none"></div>
			<div id="offscreen" role="textbox" style="left:5000px; top:10px; width:500px; height:100px"></div>
			<div id="nearby" role="textbox" style="left:-540px; top:10px; width:500px; height:100px"></div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	for _, id := range []string{"disabled", "readonly", "aria", "hidden", "invis", "clear", "noptr", "offscreen"} {
		assert.False(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='`+id+`']`)), id)
	}
	// Near-invisible but above the opacity floor stays interactable.
	assert.True(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='faint']`)))
	// Partially inside the slack-expanded viewport still qualifies.
	assert.True(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='nearby']`)))
}

func TestComposeValidatorExcludesNonComposePurposes(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<input id="search" type="text" aria-label="Search query" style="left:10px; top:10px; width:400px; height:40px">
			<input id="user" type="text" name="username" style="left:10px; top:60px; width:400px; height:40px">
			<div id="pw" role="textbox" data-testid="password-field" style="left:10px; top:120px; width:400px; height:40px"></div>
			<div id="ok" role="textbox" aria-label="What is happening?" style="left:10px; top:180px; width:400px; height:40px"></div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	for _, id := range []string{"search", "user", "pw"} {
		assert.False(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='`+id+`']`)), id)
	}
	assert.True(t, v.IsValidComposeArea(doc.NodeFor(`//*[@id='ok']`)))
}

func TestFileInputValidator(t *testing.T) {
	doc := fixture(t, `
		<html><body>
			<input id="img" type="file" accept="image/png,image/jpeg">
			<input id="any" type="file">
			<input id="wild" type="file" accept="*/*">
			<input id="offscreen" type="file" accept="image/*" style="left:-9999px; top:0px; width:1px; height:1px">
			<input id="video" type="file" accept="video/mp4">
			<input id="hidden" type="file" style="display:none">
			<input id="text" type="text">
			<div id="div"></div>
		</body></html>`)
	v := NewValidator(DefaultConfig(), doc)

	for _, id := range []string{"img", "any", "wild", "offscreen"} {
		assert.True(t, v.IsValidFileInput(doc.NodeFor(`//*[@id='`+id+`']`)), id)
	}
	for _, id := range []string{"video", "hidden", "text", "div"} {
		assert.False(t, v.IsValidFileInput(doc.NodeFor(`//*[@id='`+id+`']`)), id)
	}
}
