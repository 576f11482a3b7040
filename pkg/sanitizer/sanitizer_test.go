package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Intro to Go", Text("  <b>Intro</b>   to\tGo "))
	assert.Equal(t, "Tom & Jerry", Text("Tom &amp; Jerry"))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
}

func TestRichText(t *testing.T) {
	out := RichText(`<p onclick="x()">Learn <em>fast</em></p><script>alert(1)</script>`)
	assert.Contains(t, out, "<em>fast</em>")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "script")
}
