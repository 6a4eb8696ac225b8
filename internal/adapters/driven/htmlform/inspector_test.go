package htmlform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForm = `<!DOCTYPE html>
<html>
<head>
<title>Visa Application</title>
<style>
  .uncertain, .other { border: 2px solid red; }
  .ok { color: #333; }
</style>
</head>
<body>
<h1>Application</h1>
<form>
  <input type="text" name="name" value="Jane">
  <input type="hidden" name="token" value="x">
  <input type="checkbox" name="married" checked>
  <select name="country"><option>DE</option></select>
  <textarea class="uncertain">illegible</textarea>
  <div style="background-color: #ff0000">date?</div>
  <p class="ok">fine</p>
  <button type="submit">Save</button>
</form>
</body>
</html>`

func TestInspect(t *testing.T) {
	stats, err := New().Inspect(sampleForm)
	require.NoError(t, err)

	assert.Equal(t, "Visa Application", stats.Title)
	assert.Equal(t, 4, stats.Fields)
	assert.Equal(t, 2, stats.LowConfidence)
}

func TestInspect_FragmentUsesHeading(t *testing.T) {
	stats, err := New().Inspect(`<h1> Invoice </h1><input name="total"><span style="color:red">?</span>`)
	require.NoError(t, err)

	assert.Equal(t, "Invoice", stats.Title)
	assert.Equal(t, 1, stats.Fields)
	assert.Equal(t, 1, stats.LowConfidence)
}

func TestInspect_NoRedMarkers(t *testing.T) {
	stats, err := New().Inspect(`<div style="color: darkblue; border-color: #cccccc">x</div>`)
	require.NoError(t, err)
	assert.Zero(t, stats.LowConfidence)
}

func TestIsRedStyle(t *testing.T) {
	tests := []struct {
		style string
		want  bool
	}{
		{"color: red", true},
		{"border: 1px solid #F00", true},
		{"background: rgba(255, 0, 0, 0.2)", true},
		{"outline-color:#dc3545", true},
		{"color: darkred", false},
		{"font-family: red-hat", false},
		{"color: #333", false},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			assert.Equal(t, tt.want, isRedStyle(tt.style))
		})
	}
}

func TestDocument(t *testing.T) {
	i := New()

	wrapped := i.Document("<form></form>", "Project 1 - Page 2")
	assert.Contains(t, wrapped, "<!DOCTYPE html>")
	assert.Contains(t, wrapped, "<title>Project 1 - Page 2</title>")
	assert.Contains(t, wrapped, "<form></form>")

	full := "<html><body>x</body></html>"
	assert.Equal(t, full, i.Document(full, "ignored"))

	escaped := i.Document("<p/>", "<b>&")
	assert.Contains(t, escaped, "<title>&lt;b&gt;&amp;</title>")
}
