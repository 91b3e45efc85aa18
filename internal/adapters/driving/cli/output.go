package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// styles holds the text renderers. Plain styles are used when the output
// is not a terminal so piped output carries no escape codes.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	applied lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	grades  map[domain.QualityGrade]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain, label: plain, muted: plain,
			applied: plain, failed: plain, skipped: plain,
			grades: map[domain.QualityGrade]lipgloss.Style{},
		}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Underline(true),
		label:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		applied: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		grades: map[domain.QualityGrade]lipgloss.Style{
			domain.GradeExcellent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			domain.GradeGood:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			domain.GradeFair:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			domain.GradePoor:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
	}
}

func (s styles) grade(g domain.QualityGrade) string {
	if st, ok := s.grades[g]; ok {
		return st.Render(string(g))
	}
	return string(g)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml): %w", format, domain.ErrInvalidInput)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: %w", format, domain.ErrInvalidInput)
	}
}

// renderAnalysis prints an analysis report as text.
func renderAnalysis(w io.Writer, r *domain.AnalysisReport) {
	st := newStyles(w)
	mean, known := r.MeanPageScore()

	fmt.Fprintln(w, st.title.Render("Analysis of "+r.SourceURI))
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Pages:"), r.PageCount)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Quality:"), st.grade(domain.GradeFor(mean, known, len(r.Issues), len(r.Uncertain))))
	if r.Incomplete {
		fmt.Fprintln(w, st.skipped.Render("Analysis incomplete: time budget exceeded"))
	}
	fmt.Fprintln(w)

	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
	} else {
		planned := make(map[string]bool, len(r.Plan.Issues))
		for _, issue := range r.Plan.Issues {
			planned[issue.Key()] = true
		}
		fmt.Fprintln(w, st.label.Render("Issues:"))
		for _, issue := range r.Issues {
			mark := st.muted.Render("report only")
			if planned[issue.Key()] {
				mark = st.applied.Render("will correct")
			}
			fmt.Fprintf(w, "  - %s (%.2f, %s) %s\n", issue.String(), issue.Confidence, issue.Detector, mark)
		}
	}
	renderUncertain(w, st, r.Uncertain)
	renderFailures(w, st, r.Failures)
}

// renderReport prints a correction report as text.
func renderReport(w io.Writer, r *domain.CorrectionReport) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render("Correction report "+r.ID))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Source:"), r.SourceURI)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Created:"), r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Quality:"), st.grade(r.FinalQualityGrade))
	if r.FinalMetrics != nil {
		fmt.Fprintf(w, "%s readable %.2f, elements %d\n", st.label.Render("Metrics:"),
			r.FinalMetrics.ReadableTextRatio, r.FinalMetrics.DetectedElementCount)
	}
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Passes:"), r.Passes)
	if r.AnalysisOnly {
		fmt.Fprintln(w, st.muted.Render("Analysis only: no corrections were applied"))
	}
	if r.Incomplete {
		fmt.Fprintln(w, st.skipped.Render("Incomplete: "+r.IncompleteReason))
	}
	if r.OutputPath != "" {
		fmt.Fprintf(w, "%s %s\n", st.label.Render("Output:"), r.OutputPath)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %d\n", st.label.Render("Applied:"), len(r.Applied))
	for _, a := range r.Applied {
		fmt.Fprintf(w, "  %s %s (readable %.2f -> %.2f)\n", st.applied.Render("+"), a.Issue.String(),
			a.Before.ReadableTextRatio, a.After.ReadableTextRatio)
	}
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Rolled back:"), len(r.RolledBack))
	for _, rb := range r.RolledBack {
		reasons := make([]string, len(rb.Reasons))
		for i, reason := range rb.Reasons {
			reasons[i] = reason.Description()
		}
		fmt.Fprintf(w, "  %s %s: %s\n", st.failed.Render("x"), rb.Issue.String(), strings.Join(reasons, "; "))
	}
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Skipped:"), len(r.Skipped))
	for _, sk := range r.Skipped {
		fmt.Fprintf(w, "  %s %s: %s\n", st.skipped.Render("-"), sk.Issue.String(), sk.Reason)
	}

	moved := 0
	for _, m := range r.PageMapping {
		if m.CorrectedIndex == nil || *m.CorrectedIndex != m.OriginalIndex {
			moved++
		}
	}
	if moved > 0 {
		fmt.Fprintln(w, st.label.Render("Page mapping:"))
		for _, m := range r.PageMapping {
			if m.CorrectedIndex == nil {
				fmt.Fprintf(w, "  %d -> removed\n", m.OriginalIndex+1)
			} else if *m.CorrectedIndex != m.OriginalIndex {
				fmt.Fprintf(w, "  %d -> %d\n", m.OriginalIndex+1, *m.CorrectedIndex+1)
			}
		}
	}
	renderUncertain(w, st, r.Uncertain)
	renderFailures(w, st, r.DetectorFailures)
}

// renderSummaries prints a report listing.
func renderSummaries(w io.Writer, summaries []domain.ReportSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return
	}
	st := newStyles(w)
	for _, s := range summaries {
		status := ""
		if s.Incomplete {
			status = " " + st.skipped.Render("(incomplete)")
		}
		fmt.Fprintf(w, "%s  %s  %-9s applied %d, rolled back %d, skipped %d  %s%s\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), st.grade(s.FinalQualityGrade),
			s.Applied, s.RolledBack, s.Skipped, s.SourceURI, status)
	}
}

func renderUncertain(w io.Writer, st styles, pages []domain.UncertainPage) {
	if len(pages) == 0 {
		return
	}
	fmt.Fprintln(w, st.label.Render("Needs review:"))
	for _, p := range pages {
		fmt.Fprintf(w, "  page %d (confidence %.2f)\n", p.PageIndex+1, p.Score)
	}
}

func renderFailures(w io.Writer, st styles, failures []domain.DetectorFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w, st.label.Render("Detector failures:"))
	for _, f := range failures {
		where := "document"
		if f.Page >= 0 {
			where = fmt.Sprintf("page %d", f.Page+1)
		}
		fmt.Fprintf(w, "  %s %s: %s\n", st.failed.Render(f.Detector), where, f.Error)
	}
}
