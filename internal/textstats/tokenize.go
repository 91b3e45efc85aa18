package textstats

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into case-folded word tokens. Tokens are maximal
// runs of letters, digits and inner apostrophes that contain at least
// one letter. Text is NFKC-normalised first so ligatures and full-width
// forms produced by OCR compare equal to their plain forms.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	s = norm.NFKC.String(s)
	fold := cases.Fold()

	var tokens []string
	var b strings.Builder
	hasLetter := false
	flush := func() {
		if b.Len() > 0 && hasLetter {
			tok := strings.Trim(b.String(), "'")
			if tok != "" {
				tokens = append(tokens, fold.String(tok))
			}
		}
		b.Reset()
		hasLetter = false
	}

	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			if b.Len() > 0 {
				b.WriteRune('\'')
			}
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
