package mime

import (
	"path/filepath"
	"strings"
)

// Matcher maps a file path to its MIME. Unknown is returned when nothing matches.
type Matcher func(path string) MIME

// Strict matches the exact file extension against the Extension table.
func Strict(path string) MIME {
	return Extension[filepath.Ext(path)]
}

// loose is checked in order, the first token contained in the extension wins.
var loose = []struct {
	token string
	mime  MIME
}{
	{"html", HTML},
	{"gif", GIF},
	{"jpg", JPEG},
	{"jpeg", JPEG},
}

// Loose reports the MIME if the text after the last dot merely contains one of a few
// well-known extensions, so `.jpgx` and `.xhtml5` match too.
func Loose(path string) MIME {
	dot := strings.LastIndexByte(path, '.')
	if dot == -1 {
		return Unknown
	}

	ext := path[dot+1:]
	for _, candidate := range loose {
		if strings.Contains(ext, candidate.token) {
			return candidate.mime
		}
	}

	return Unknown
}

// NewMatcher returns Strict or Loose.
func NewMatcher(strict bool) Matcher {
	if strict {
		return Strict
	}

	return Loose
}
