package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<!doctype html>
<html>
<head>
  <title>G3015X Fiber Laser | HSG</title>
  <script>var power = "99 kW";</script>
  <style>.x { width: 1000px }</style>
</head>
<body>
  <nav><a href="/about">About</a> 30 kW series</nav>
  <main>
    <h1>G3015X</h1>
    <p>Laser power <b>6</b>&nbsp;kW</p>
    <table><tr><td>Working area</td><td>3000 x 1500 mm</td></tr></table>
    <form><input value="12 kW"></form>
  </main>
  <footer>Contact us</footer>
</body>
</html>`

func TestNewPage(t *testing.T) {
	p, err := Parse(productHTML, "https://www.hsglaser.com/products/g3015x/")
	require.NoError(t, err)

	assert.Equal(t, "G3015X Fiber Laser | HSG", p.Title)
	assert.Equal(t, "G3015X", p.H1())

	assert.NotContains(t, p.Text, "99 kW", "script text is not visible")
	assert.NotContains(t, p.Text, "1000px")
	assert.Contains(t, p.Text, "30 kW series")
	assert.Contains(t, p.Text, "Laser power 6 kW")
	assert.Contains(t, p.Text, "Working area 3000 x 1500 mm")
	assert.Contains(t, p.Lower, "contact us")

	assert.Contains(t, p.MainText, "laser power 6 kw")
	assert.NotContains(t, p.MainText, "30 kw series", "nav is scoped out")
	assert.NotContains(t, p.MainText, "contact us")

	// The original document keeps its navigation.
	assert.Equal(t, 1, p.Doc.Find("nav").Length())
	assert.Equal(t, 0, p.Main.Find("form").Length())
}

func TestMainFallsBackToBody(t *testing.T) {
	p, err := Parse(`<html><body><div>TruLaser 3030</div><footer>Imprint</footer></body></html>`, "https://www.trumpf.com/x")
	require.NoError(t, err)
	assert.Equal(t, "trulaser 3030", p.MainText)
}

func TestResolve(t *testing.T) {
	p, err := Parse(`<html></html>`, "https://www.bodor.com/en/products/i5/")
	require.NoError(t, err)

	tests := []struct {
		href string
		want string
	}{
		{href: "/files/i5-datasheet.pdf", want: "https://www.bodor.com/files/i5-datasheet.pdf"},
		{href: "spec.pdf#page=2", want: "https://www.bodor.com/en/products/i5/spec.pdf"},
		{href: "https://cdn.bodor.com/a.jpg", want: "https://cdn.bodor.com/a.jpg"},
		{href: "  ", want: ""},
		{href: "javascript:void(0)", want: ""},
		{href: "mailto:sales@bodor.com", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.href))
		})
	}
}
