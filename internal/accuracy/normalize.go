package accuracy

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Word runes are Unicode letters, digits, combining marks and the
	// underscore. Everything else except whitespace is stripped, so the
	// comparison is insensitive to punctuation and symbols. Combining
	// marks must survive because Urdu diacritics are encoded as marks.
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s]+`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw text for comparison: Unicode NFC, punctuation
// and symbol removal, whitespace collapsing and case folding. Case folding is
// a no-op for scripts without case, such as Urdu.
//
// Punctuation is removed before whitespace is collapsed so that a stripped
// interior token ("a - b") cannot leave a double space behind. This keeps
// Normalize idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := norm.NFC.String(text)
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}
