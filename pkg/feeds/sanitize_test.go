package feeds

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEmpty(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitizeStripsTags(t *testing.T) {
	got := Sanitize(`<p>Hello <a href="https://example.com">world</a></p><br/>`)
	assert.Equal(t, "Hello world", got)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
}

func TestSanitizeDecodesEntities(t *testing.T) {
	assert.Equal(t, `Fish & "Chips"`, Sanitize("Fish &amp; &quot;Chips&quot;"))
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	got := Sanitize("one\n\ntwo\t three   four ")
	assert.Equal(t, "one two three four", got)
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := Sanitize(long)
	assert.Len(t, got, 300)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 297), got[:297])
}

func TestSanitizeKeepsShortTextIntact(t *testing.T) {
	short := strings.Repeat("b", 300)
	assert.Equal(t, short, Sanitize(short))
}

func TestSanitizeIdempotentOnCleanText(t *testing.T) {
	clean := "Plain sentence with no markup."
	assert.Equal(t, clean, Sanitize(Sanitize(clean)))
}

func TestSanitizeDropsScriptBodies(t *testing.T) {
	got := Sanitize(`<script>alert("x")</script><p>visible</p>`)
	assert.NotContains(t, got, "alert")
	assert.Contains(t, got, "visible")
}
