package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b> "))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "Tom & Jerry", SanitizeText("Tom & Jerry"))
	assert.Equal(t, "", SanitizeText(""))

	assert.Nil(t, SanitizeTextPtr(nil))
	in := "<i>desc</i>"
	assert.Equal(t, "desc", *SanitizeTextPtr(&in))
}

func TestSanitizeTextEncodedMarkup(t *testing.T) {
	assert.Equal(t, "", SanitizeText("&lt;img src=x onerror=alert(1)&gt;"))
	assert.Equal(t, "x", SanitizeText("&amp;lt;b&amp;gt;x&amp;lt;/b&amp;gt;"))
	assert.Equal(t, "hi", SanitizeText("&#60;script&#62;alert(1)&#60;/script&#62;hi"))
	assert.NotContains(t, SanitizeText("a &lt;a href=\"javascript:x\"&gt;link&lt;/a&gt;"), "<a")
}
