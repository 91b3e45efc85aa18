package order

import (
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/textstats"
)

// Sentence signal values for one page junction.
const (
	signalJoined     = 1.0  // open sentence continued on the next page
	signalCleanBreak = 0.85 // sentence ends, next page starts fresh
	signalNeutral    = 0.5  // one side has no body text
	signalBroken     = 0.25 // open sentence followed by a new one
	signalOrphan     = 0.0  // next page continues a sentence never opened
)

// pageInfo is the text evidence extracted from one page.
type pageInfo struct {
	layout   textstats.Layout
	headings [][]int
	captions map[textstats.Reference]bool
	refs     []textstats.Reference
}

func analyzePage(p domain.Page) pageInfo {
	info := pageInfo{
		layout:   textstats.AnalyzeLayout(p.TextOrEmpty()),
		captions: make(map[textstats.Reference]bool),
	}
	for _, line := range info.layout.Body {
		switch line.Kind {
		case textstats.LineHeading:
			if n, ok := textstats.HeadingNumber(line.Text); ok {
				info.headings = append(info.headings, n)
			}
		case textstats.LineCaption:
			if kind, n, ok := textstats.CaptionNumber(line.Text); ok {
				info.captions[textstats.Reference{Kind: kind, Number: n}] = true
			}
		default:
			info.refs = append(info.refs, textstats.References(line.Text)...)
		}
	}
	return info
}

// junctionScore is the mean of the continuity signals available for
// page a followed by page b.
func junctionScore(a, b pageInfo) float64 {
	signals := []float64{sentenceSignal(a.layout, b.layout)}

	if len(a.headings) > 0 && len(b.headings) > 0 {
		last, first := a.headings[len(a.headings)-1], b.headings[0]
		if textstats.CompareSections(last, first) < 0 {
			signals = append(signals, 1)
		} else {
			signals = append(signals, 0)
		}
	}

	// A reference on a pointing to a caption on b supports a before b.
	if referencesAcross(a, b) {
		signals = append(signals, 1)
	}

	var sum float64
	for _, s := range signals {
		sum += s
	}
	return sum / float64(len(signals))
}

func sentenceSignal(a, b textstats.Layout) float64 {
	if len(a.Body) == 0 || len(b.Body) == 0 {
		return signalNeutral
	}
	open, continued := a.OpenTail(), b.ContinuedHead()
	switch {
	case open && continued:
		return signalJoined
	case open:
		return signalBroken
	case continued:
		return signalOrphan
	default:
		return signalCleanBreak
	}
}

// referencesAcross reports whether from refers to a figure or table
// captioned on to.
func referencesAcross(from, to pageInfo) bool {
	for _, r := range from.refs {
		if to.captions[r] {
			return true
		}
	}
	return false
}
