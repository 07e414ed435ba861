// backend/src/security/validation/sanitizers.go
package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictHTMLPolicy strips every tag and attribute.
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy()
}

// SanitizeText removes all HTML from an upstream string before it is shown
// in a rendered table. The result is still escaped by the template layer.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanDisplayText prepares free text from an upstream record for display.
// Tags are dropped and entities decoded, so the caller must escape the result.
func CleanDisplayText(s string) string {
	return strings.TrimSpace(html.UnescapeString(SanitizeText(StripUnprintable(s))))
}
