package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/textstats"
)

// Readability thresholds.
const (
	// minSentenceDictRatio is the dictionary share a readable sentence needs.
	minSentenceDictRatio = 0.5

	// minRepeatTokens is the shortest sentence treated as a redundant repeat.
	minRepeatTokens = 4

	// repeatSimilarity is the token similarity at which a sentence repeats
	// an earlier one, so a rescan with a few misread words still counts.
	repeatSimilarity = 0.85

	// minPageRatio floors per-page ratios so the harmonic mean stays finite.
	minPageRatio = 0.01
)

// QualityVerifier scores a document version from its page text alone.
// Scores are deterministic and only meaningful for comparing two versions
// of the same document.
type QualityVerifier struct {
	dict *textstats.Dictionary
}

// NewQualityVerifier creates a verifier using the embedded dictionary.
func NewQualityVerifier() *QualityVerifier {
	return &QualityVerifier{dict: textstats.DefaultDictionary()}
}

// Score computes the quality metrics of a document version.
//
// ReadableTextRatio is the harmonic mean over pages of the share of prose
// tokens that sit in readable sentences, so one unreadable page weighs on
// the document however long it is. DetectedElementCount counts headings,
// captions, lists and tables of two or more aligned rows.
//
// Returns domain.ErrQualityUnknown when the document is empty, a page has
// no extracted text, or no prose exists.
func (v *QualityVerifier) Score(doc *domain.PaginatedDocument) (domain.QualityMetrics, error) {
	if doc == nil || doc.Len() == 0 {
		return domain.QualityMetrics{}, fmt.Errorf("empty document: %w", domain.ErrQualityUnknown)
	}
	pages := doc.Pages()
	layouts := make([]textstats.Layout, len(pages))
	for i, p := range pages {
		if !p.HasText() {
			return domain.QualityMetrics{}, fmt.Errorf("page %d has no text: %w", p.OriginalIndex+1, domain.ErrQualityUnknown)
		}
		layouts[i] = textstats.AnalyzeLayout(p.TextOrEmpty())
	}

	ratio, ok := v.readableRatio(layouts)
	if !ok {
		return domain.QualityMetrics{}, fmt.Errorf("no prose: %w", domain.ErrQualityUnknown)
	}
	return domain.QualityMetrics{
		ReadableTextRatio:    ratio,
		DetectedElementCount: countElements(layouts),
	}, nil
}

// pageTally counts prose tokens per page.
type pageTally struct {
	total, readable int
}

// openSentence is an unterminated sentence carried to the next page.
type openSentence struct {
	text string
	page int
}

// readableRatio walks prose across pages, joining sentences continued over
// a page break and penalising sentences broken by one.
func (v *QualityVerifier) readableRatio(layouts []textstats.Layout) (float64, bool) {
	tallies := make([]pageTally, len(layouts))
	var seen repeats

	// judge scores one sentence whose tokens are split between pages.
	judge := func(parts []openSentence, broken bool) {
		var all []string
		counts := make([]int, len(parts))
		for k, part := range parts {
			toks := textstats.Tokenize(part.text)
			counts[k] = len(toks)
			all = append(all, toks...)
		}
		if len(all) == 0 {
			return
		}
		readable := !broken && v.dict.Ratio(all) >= minSentenceDictRatio
		if len(all) >= minRepeatTokens && seen.add(all) {
			readable = false
		}
		for k, part := range parts {
			tallies[part.page].total += counts[k]
			if readable {
				tallies[part.page].readable += counts[k]
			}
		}
	}

	var carry *openSentence
	for page, layout := range layouts {
		segments := proseSegments(layout)
		for si, seg := range segments {
			sentences := textstats.SplitSentences(seg.text)
			if len(sentences) == 0 {
				continue
			}
			first := 0
			switch {
			case si == 0 && seg.atHead && carry != nil && textstats.StartsLowercase(seg.text):
				judge([]openSentence{*carry, {text: sentences[0], page: page}}, false)
				carry = nil
				first = 1
			case si == 0 && seg.atHead && carry == nil && textstats.StartsLowercase(seg.text):
				judge([]openSentence{{text: sentences[0], page: page}}, true)
				first = 1
			}
			if carry != nil {
				judge([]openSentence{*carry}, true)
				carry = nil
			}

			last := len(sentences)
			if seg.atTail && first < last && !textstats.EndsSentence(sentences[last-1]) {
				carry = &openSentence{text: sentences[last-1], page: page}
				last--
			}
			for _, s := range sentences[first:last] {
				judge([]openSentence{{text: s, page: page}}, false)
			}
		}
		if len(segments) == 0 && carry != nil {
			judge([]openSentence{*carry}, true)
			carry = nil
		}
	}
	if carry != nil {
		judge([]openSentence{*carry}, true)
	}

	var inverse float64
	counted := 0
	for _, t := range tallies {
		if t.total == 0 {
			continue
		}
		r := max(float64(t.readable)/float64(t.total), minPageRatio)
		inverse += 1 / r
		counted++
	}
	if counted == 0 {
		return 0, false
	}
	return float64(counted) / inverse, true
}

// repeats remembers the sentences seen so far in a document.
type repeats struct {
	exact     map[string]bool
	sentences [][]string
}

// add records a tokenized sentence and reports whether it repeats an
// earlier one exactly or with token similarity of at least repeatSimilarity.
func (r *repeats) add(tokens []string) bool {
	if r.exact == nil {
		r.exact = make(map[string]bool)
	}
	key := strings.Join(tokens, " ")
	if r.exact[key] {
		return true
	}
	r.exact[key] = true

	repeated := false
	for _, prev := range r.sentences {
		// Lengths this far apart cannot reach the similarity threshold.
		longer := max(len(prev), len(tokens))
		diff := len(prev) - len(tokens)
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) > (1-repeatSimilarity)*float64(longer) {
			continue
		}
		if textstats.TokenSimilarity(prev, tokens) >= repeatSimilarity {
			repeated = true
			break
		}
	}
	r.sentences = append(r.sentences, tokens)
	return repeated
}

// proseSegment is a run of consecutive prose lines on one page.
type proseSegment struct {
	text   string
	atHead bool
	atTail bool
}

func proseSegments(layout textstats.Layout) []proseSegment {
	var segments []proseSegment
	var lines []string
	start := 0
	flush := func(end int) {
		if len(lines) == 0 {
			return
		}
		segments = append(segments, proseSegment{
			text:   textstats.JoinProse(lines),
			atHead: start == 0,
			atTail: end == len(layout.Body),
		})
		lines = nil
	}
	for i, line := range layout.Body {
		if line.Kind != textstats.LineProse {
			flush(i)
			continue
		}
		if len(lines) == 0 {
			start = i
		}
		lines = append(lines, line.Text)
	}
	flush(len(layout.Body))
	return segments
}

// countElements counts structural elements. Table rows and list items
// continue a run across a page break when the next page opens with them.
func countElements(layouts []textstats.Layout) int {
	count := 0
	var run struct {
		kind textstats.LineKind
		cols int
		rows int
	}
	flush := func() {
		switch run.kind {
		case textstats.LineTableRow:
			if run.rows >= 2 {
				count++
			}
		case textstats.LineListItem:
			count++
		}
		run.kind, run.cols, run.rows = textstats.LineBlank, 0, 0
	}

	for _, layout := range layouts {
		for _, line := range layout.Body {
			switch line.Kind {
			case textstats.LineTableRow:
				cols := textstats.TableColumns(line.Text)
				if run.kind == textstats.LineTableRow && run.cols == cols {
					run.rows++
					continue
				}
				flush()
				run.kind, run.cols, run.rows = textstats.LineTableRow, cols, 1
			case textstats.LineListItem:
				if run.kind == textstats.LineListItem {
					run.rows++
					continue
				}
				flush()
				run.kind, run.rows = textstats.LineListItem, 1
			case textstats.LineHeading, textstats.LineCaption:
				flush()
				count++
			default:
				flush()
			}
		}
	}
	flush()
	return count
}
