package textstats

// Line is one classified line of page text.
type Line struct {
	Text string
	Kind LineKind
}

// Layout is the classified content of one page.
type Layout struct {
	// Body holds every non-blank line except page number lines.
	Body []Line

	// Label is the page number printed in the header or footer.
	Label    int
	HasLabel bool
}

// labelZone is how many lines at each end of a page may carry its number.
const labelZone = 2

// AnalyzeLayout classifies the lines of one page.
func AnalyzeLayout(text string) Layout {
	lines := Lines(text)
	var layout Layout
	for _, l := range HeaderFooterLines(lines, labelZone) {
		if n, ok := ParsePageNumber(l); ok {
			layout.Label, layout.HasLabel = n, true
			break
		}
	}
	layout.Body = make([]Line, 0, len(lines))
	for _, l := range lines {
		kind := ClassifyLine(l)
		if kind == LinePageNumber || kind == LineBlank {
			continue
		}
		layout.Body = append(layout.Body, Line{Text: l, Kind: kind})
	}
	return layout
}

// Head returns the first body line.
func (l Layout) Head() (Line, bool) {
	if len(l.Body) == 0 {
		return Line{}, false
	}
	return l.Body[0], true
}

// Tail returns the last body line.
func (l Layout) Tail() (Line, bool) {
	if len(l.Body) == 0 {
		return Line{}, false
	}
	return l.Body[len(l.Body)-1], true
}

// OpenTail reports whether the page ends inside a sentence.
func (l Layout) OpenTail() bool {
	tail, ok := l.Tail()
	return ok && tail.Kind == LineProse && !EndsSentence(tail.Text)
}

// ContinuedHead reports whether the page opens mid-sentence.
func (l Layout) ContinuedHead() bool {
	head, ok := l.Head()
	return ok && head.Kind == LineProse && StartsLowercase(head.Text)
}
