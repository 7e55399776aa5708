package mime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithCharset(t *testing.T) {
	require.Equal(t, "text/html; charset=UTF-8", WithCharset(HTML))
	require.Equal(t, GIF, WithCharset(GIF))
	require.Equal(t, Unknown, WithCharset(Unknown))
}

func TestMatchers(t *testing.T) {
	tcs := []struct {
		Path          string
		Strict, Loose MIME
	}{
		{"index.html", HTML, HTML},
		{"dir/index.htm", HTML, Unknown},
		{"cat.gif", GIF, GIF},
		{"cat.jpg", JPEG, JPEG},
		{"cat.jpeg", JPEG, JPEG},
		{"cat.jpgx", Unknown, JPEG},
		{"page.xhtml5", Unknown, HTML},
		{"style.css", CSS, Unknown},
		{"README", Unknown, Unknown},
		{"archive.tar.gz", Unknown, Unknown},
		{"INDEX.HTML", Unknown, Unknown},
	}

	for _, tc := range tcs {
		t.Run(tc.Path, func(t *testing.T) {
			require.Equal(t, tc.Strict, NewMatcher(true)(tc.Path))
			require.Equal(t, tc.Loose, NewMatcher(false)(tc.Path))
		})
	}
}
