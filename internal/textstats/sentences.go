package textstats

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations never end a sentence.
var abbreviations = map[string]bool{
	"e.g.": true, "i.e.": true, "etc.": true, "vs.": true, "cf.": true,
	"dr.": true, "mr.": true, "mrs.": true, "ms.": true, "prof.": true,
	"fig.": true, "no.": true, "p.": true, "pp.": true, "vol.": true,
	"st.": true, "inc.": true, "ltd.": true, "approx.": true, "eq.": true,
}

const closers = `"'”’)]`

// EndsSentence reports whether text ends with terminal punctuation,
// ignoring trailing quotes and brackets.
func EndsSentence(text string) bool {
	t := strings.TrimRight(strings.TrimSpace(text), closers)
	if t == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(t)
	switch r {
	case '.', '!', '?', '…':
	default:
		return false
	}
	fields := strings.Fields(t)
	return !abbreviations[strings.ToLower(fields[len(fields)-1])]
}

// firstLetter returns the first letter or digit in text.
func firstLetter(text string) (rune, bool) {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r, true
		}
	}
	return 0, false
}

// StartsLowercase reports whether the first letter of text is lowercase,
// which marks a sentence continued from elsewhere.
func StartsLowercase(text string) bool {
	r, ok := firstLetter(text)
	return ok && unicode.IsLower(r)
}

// StartsSentence reports whether text opens like a new sentence.
func StartsSentence(text string) bool {
	r, ok := firstLetter(text)
	return ok && (unicode.IsUpper(r) || unicode.IsDigit(r))
}

// JoinProse joins wrapped lines into running text, rejoining words
// hyphenated across line breaks.
func JoinProse(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if b.Len() > 0 {
			prev := b.String()
			if strings.HasSuffix(prev, "-") && len(prev) > 1 && StartsLowercase(l) {
				trimmed := strings.TrimSuffix(prev, "-")
				b.Reset()
				b.WriteString(trimmed)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(l)
	}
	return b.String()
}

// SplitSentences splits running text into sentences. The final sentence
// is returned even when it is not terminated.
func SplitSentences(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var sentences []string
	start := 0
	for i, w := range words {
		if !EndsSentence(w) {
			continue
		}
		if i+1 < len(words) && !StartsSentence(words[i+1]) {
			continue
		}
		sentences = append(sentences, strings.Join(words[start:i+1], " "))
		start = i + 1
	}
	if start < len(words) {
		sentences = append(sentences, strings.Join(words[start:], " "))
	}
	return sentences
}
