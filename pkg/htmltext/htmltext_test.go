package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "  \n\t ", ""},
		{"plain text passes through", "1. A widget  comprising\ta frame.", "1. A widget comprising a frame."},
		{"br splits lines", "first<br />second<br/>third", "first\nsecond\nthird"},
		{"entities decoded", "A &amp; B &lt;x&gt; &#8220;q&#8221;", "A & B <x> “q”"},
		{"paragraphs", "<p>1. A widget.</p><p>2. The widget of claim 1.</p>", "1. A widget.\n2. The widget of claim 1."},
		{"inline tags do not split", "a <b>bold</b> <i>word</i>", "a bold word"},
		{"script dropped", "<script>var x = 1;</script>text", "text"},
		{"nested divs collapse blank lines", "<div><div>a</div></div><div>b</div>", "a\nb"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToText(tt.in))
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	t.Parallel()

	assert.True(t, LooksLikeHTML("<p>x</p>"))
	assert.True(t, LooksLikeHTML("a<br/>b"))
	assert.True(t, LooksLikeHTML("x </div>"))
	assert.False(t, LooksLikeHTML("a < b and c > d"))
	assert.False(t, LooksLikeHTML("plain"))
	assert.False(t, LooksLikeHTML("ends with <"))
}
