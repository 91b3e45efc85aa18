package textstats

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// LineKind classifies one line of page text.
type LineKind int

// Line kinds.
const (
	LineBlank LineKind = iota
	LinePageNumber
	LineCaption
	LineTableRow
	LineHeading
	LineListItem
	LineProse
)

// String returns the string representation.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LinePageNumber:
		return "page_number"
	case LineCaption:
		return "caption"
	case LineTableRow:
		return "table_row"
	case LineHeading:
		return "heading"
	case LineListItem:
		return "list_item"
	case LineProse:
		return "prose"
	default:
		return "unknown"
	}
}

// pageNumberPatterns are matched after every digit run becomes "#".
var pageNumberPatterns = []string{
	"#",
	"page #",
	"- # -",
	"-#-",
	"# of #",
	"page # of #",
	"#/#",
	"# / #",
	"p. #",
	"p.#",
	"pg #",
	"pg. #",
	"[#]",
	"(#)",
}

var (
	digitRun       = regexp.MustCompile(`\d+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	cellSeparator  = regexp.MustCompile(`\s{2,}|\t|\|`)
	captionPattern = regexp.MustCompile(`(?i)^(figure|fig\.|table|exhibit)\s+(\d+)\s*[:.\-–]`)
	headingPattern = regexp.MustCompile(`(?i)^(?:(?:chapter|section|part)\s+(\d+(?:\.\d+)*)|(\d+(?:\.\d+)*)\.?)\s+\S`)
	listPattern    = regexp.MustCompile(`^(?:[-•*▪–]\s+|\(?[a-z0-9]{1,2}[.)]\s+)`)
	referencePat   = regexp.MustCompile(`(?i)\b(?:see|cf\.?|refer\s+to|in)\s+(figure|fig\.|table)\s+(\d+)`)
)

// maxHeadingWords is the longest line still treated as a heading.
const maxHeadingWords = 10

// ParsePageNumber returns the page number carried by a header or footer
// line such as "7", "- 7 -", "Page 7 of 9", "7/9" or "p. 7".
func ParsePageNumber(line string) (int, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 24 {
		return 0, false
	}
	normalized := whitespaceRun.ReplaceAllString(strings.ToLower(trimmed), " ")
	shape := digitRun.ReplaceAllString(normalized, "#")

	matched := false
	for _, p := range pageNumberPatterns {
		if shape == p {
			matched = true
			break
		}
	}
	if !matched {
		return 0, false
	}

	n, err := strconv.Atoi(digitRun.FindString(normalized))
	if err != nil || n <= 0 || n > 100000 {
		return 0, false
	}
	return n, true
}

// CaptionNumber returns the kind ("figure" or "table") and number of a
// caption line such as "Figure 3: Results".
func CaptionNumber(line string) (string, int, bool) {
	m := captionPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return captionKind(m[1]), n, true
}

func captionKind(word string) string {
	switch strings.ToLower(word) {
	case "figure", "fig.":
		return "figure"
	default:
		return "table"
	}
}

// Reference is a textual pointer to a figure or table, as in "see Figure 4".
type Reference struct {
	Kind   string
	Number int
}

// References returns every figure or table reference in text.
func References(text string) []Reference {
	matches := referencePat.FindAllStringSubmatch(text, -1)
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		refs = append(refs, Reference{Kind: captionKind(m[1]), Number: n})
	}
	return refs
}

// HeadingNumber returns the section number of a numbered heading such
// as "2.3 Methods" or "Chapter 4 Results".
func HeadingNumber(line string) ([]int, bool) {
	trimmed := strings.TrimSpace(line)
	if !isHeadingShape(trimmed) {
		return nil, false
	}
	m := headingPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	parts := strings.Split(raw, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// CompareSections compares two section numbers component-wise.
func CompareSections(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// TableColumns returns the number of cells in a table-like row, or 0.
func TableColumns(line string) int {
	trimmed := strings.TrimSpace(line)
	if !cellSeparator.MatchString(trimmed) {
		return 0
	}
	cells := 0
	for _, c := range cellSeparator.Split(trimmed, -1) {
		if strings.TrimSpace(c) != "" {
			cells++
		}
	}
	if cells < 3 {
		return 0
	}
	return cells
}

// ClassifyLine assigns a kind to one line of text.
func ClassifyLine(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return LineBlank
	case isPageNumberLine(trimmed):
		return LinePageNumber
	case captionPattern.MatchString(trimmed):
		return LineCaption
	case TableColumns(line) > 0:
		return LineTableRow
	case isHeading(trimmed):
		return LineHeading
	case listPattern.MatchString(trimmed):
		return LineListItem
	default:
		return LineProse
	}
}

func isPageNumberLine(line string) bool {
	_, ok := ParsePageNumber(line)
	return ok
}

func isHeading(line string) bool {
	if !isHeadingShape(line) {
		return false
	}
	if headingPattern.MatchString(line) {
		return true
	}
	return isAllCaps(line)
}

// isHeadingShape rejects lines that read like sentences.
func isHeadingShape(line string) bool {
	if len(strings.Fields(line)) > maxHeadingWords {
		return false
	}
	return !EndsSentence(line)
}

func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

// HeaderFooterLines returns the first and last n lines of a page, where
// running headers, footers and page numbers live.
func HeaderFooterLines(lines []string, n int) []string {
	if len(lines) <= 2*n {
		out := make([]string, len(lines))
		copy(out, lines)
		return out
	}
	out := make([]string, 0, 2*n)
	out = append(out, lines[:n]...)
	out = append(out, lines[len(lines)-n:]...)
	return out
}
