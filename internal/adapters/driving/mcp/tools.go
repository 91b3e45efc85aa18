package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// defaultListLimit bounds list_reports when no limit is given.
const defaultListLimit = 20

// ErrReportsUnavailable is returned by report tools when no store is configured.
var ErrReportsUnavailable = errors.New("report store not configured")

// AnalyzeInput is the input schema for the analyze_document tool.
type AnalyzeInput struct {
	Path string `json:"path" jsonschema:"path to a PDF, page image or directory of page images"`
}

// AnalyzeOutput is the output schema for the analyze_document tool.
type AnalyzeOutput struct {
	PageCount  int                    `json:"page_count"`
	Issues     []IssueOutput          `json:"issues"`
	Planned    []IssueOutput          `json:"planned"`
	Uncertain  []domain.UncertainPage `json:"uncertain,omitempty"`
	Failures   int                    `json:"detector_failures"`
	Grade      domain.QualityGrade    `json:"grade"`
	Incomplete bool                   `json:"incomplete,omitempty"`
}

// IssueOutput is a flattened issue.
type IssueOutput struct {
	Kind        domain.IssueKind `json:"kind"`
	Confidence  float64          `json:"confidence"`
	Detector    string           `json:"detector"`
	Description string           `json:"description"`
}

// CorrectInput is the input schema for the correct_document tool.
type CorrectInput struct {
	Path         string `json:"path" jsonschema:"path to a PDF, page image or directory of page images"`
	OutputPath   string `json:"output_path,omitempty" jsonschema:"where to write the corrected PDF (omit to only report)"`
	Exporter     string `json:"exporter,omitempty" jsonschema:"auto, pdf or raster (default from settings)"`
	AnalysisOnly bool   `json:"analysis_only,omitempty" jsonschema:"report the plan without applying it"`
}

// CorrectOutput is the output schema for the correct_document tool.
type CorrectOutput struct {
	Report *domain.CorrectionReport `json:"report"`
}

// GetReportInput is the input schema for the get_report tool.
type GetReportInput struct {
	ID string `json:"id" jsonschema:"the report ID"`
}

// ListReportsInput is the input schema for the list_reports tool.
type ListReportsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of reports to return (default 20)"`
}

// ListReportsOutput is the output schema for the list_reports tool.
type ListReportsOutput struct {
	Reports []domain.ReportSummary `json:"reports"`
	Count   int                    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Detect rotated, duplicate and out-of-order pages without changing anything",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "correct_document",
		Description: "Correct page rotation, duplicates and order, keeping only verified improvements",
	}, s.handleCorrect)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get a stored correction report by ID",
	}, s.handleGetReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List stored correction reports, newest first",
	}, s.handleListReports)
}

// handleAnalyze handles the analyze_document tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeOutput{}, fmt.Errorf("path: %w", domain.ErrInvalidInput)
	}
	report, err := s.ports.Correction.Analyze(ctx, input.Path)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	mean, known := report.MeanPageScore()
	output := AnalyzeOutput{
		PageCount:  report.PageCount,
		Issues:     issueOutputs(report.Issues),
		Planned:    issueOutputs(report.Plan.Issues),
		Uncertain:  report.Uncertain,
		Failures:   len(report.Failures),
		Grade:      domain.GradeFor(mean, known, len(report.Issues), len(report.Uncertain)),
		Incomplete: report.Incomplete,
	}
	return nil, output, nil
}

// handleCorrect handles the correct_document tool invocation.
func (s *Server) handleCorrect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CorrectInput,
) (*mcp.CallToolResult, CorrectOutput, error) {
	if input.Path == "" {
		return nil, CorrectOutput{}, fmt.Errorf("path: %w", domain.ErrInvalidInput)
	}
	result, err := s.ports.Correction.Correct(ctx, driving.CorrectionRequest{
		Path:         input.Path,
		OutputPath:   input.OutputPath,
		Exporter:     domain.ExportFormat(input.Exporter),
		AnalysisOnly: input.AnalysisOnly,
	})
	if err != nil {
		return nil, CorrectOutput{}, err
	}
	return nil, CorrectOutput{Report: result.Report}, nil
}

// handleGetReport handles the get_report tool invocation.
func (s *Server) handleGetReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetReportInput,
) (*mcp.CallToolResult, CorrectOutput, error) {
	if s.ports.Reports == nil {
		return nil, CorrectOutput{}, ErrReportsUnavailable
	}
	report, err := s.ports.Reports.Get(ctx, input.ID)
	if err != nil {
		return nil, CorrectOutput{}, err
	}
	return nil, CorrectOutput{Report: report}, nil
}

// handleListReports handles the list_reports tool invocation.
func (s *Server) handleListReports(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListReportsInput,
) (*mcp.CallToolResult, ListReportsOutput, error) {
	if s.ports.Reports == nil {
		return nil, ListReportsOutput{}, ErrReportsUnavailable
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	summaries, err := s.ports.Reports.List(ctx, limit)
	if err != nil {
		return nil, ListReportsOutput{}, err
	}
	return nil, ListReportsOutput{Reports: summaries, Count: len(summaries)}, nil
}

func issueOutputs(issues []domain.Issue) []IssueOutput {
	out := make([]IssueOutput, len(issues))
	for i, issue := range issues {
		out[i] = IssueOutput{
			Kind:        issue.Kind,
			Confidence:  issue.Confidence,
			Detector:    issue.Detector,
			Description: issue.String(),
		}
	}
	return out
}
