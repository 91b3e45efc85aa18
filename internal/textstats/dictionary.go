package textstats

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed words.txt
var embeddedWords string

var (
	defaultDictOnce sync.Once
	defaultDict     *Dictionary
)

// Dictionary is a read-only set of known words. It is safe for
// concurrent use.
type Dictionary struct {
	words map[string]struct{}
}

// NewDictionary creates a dictionary from a word list.
func NewDictionary(words []string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		for _, tok := range Tokenize(w) {
			d.words[tok] = struct{}{}
		}
	}
	return d
}

// DefaultDictionary returns the embedded English dictionary.
func DefaultDictionary() *Dictionary {
	defaultDictOnce.Do(func() {
		defaultDict = NewDictionary(strings.Fields(embeddedWords))
	})
	return defaultDict
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// suffixRules are tried in order; replacement restores a base form.
var suffixRules = []struct {
	suffix      string
	replacement string
}{
	{"'s", ""},
	{"ies", "y"},
	{"ied", "y"},
	{"ing", ""},
	{"ing", "e"},
	{"ed", ""},
	{"ed", "e"},
	{"es", ""},
	{"s", ""},
	{"ly", ""},
	{"er", ""},
	{"est", ""},
	{"ment", ""},
	{"ness", ""},
	{"al", ""},
}

// Contains reports whether a folded token is a known word or an
// inflection of one.
func (d *Dictionary) Contains(tok string) bool {
	if _, ok := d.words[tok]; ok {
		return true
	}
	for _, rule := range suffixRules {
		if !strings.HasSuffix(tok, rule.suffix) {
			continue
		}
		base := strings.TrimSuffix(tok, rule.suffix)
		if len(base) < 2 {
			continue
		}
		if _, ok := d.words[base+rule.replacement]; ok {
			return true
		}
		// running -> run, stopped -> stop
		if n := len(base); rule.replacement == "" && n > 2 && base[n-1] == base[n-2] {
			if _, ok := d.words[base[:n-1]]; ok {
				return true
			}
		}
	}
	return false
}

// Ratio returns the fraction of tokens that are known words.
// An empty token list has ratio 0.
func (d *Dictionary) Ratio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	known := 0
	for _, tok := range tokens {
		if d.Contains(tok) {
			known++
		}
	}
	return float64(known) / float64(len(tokens))
}
