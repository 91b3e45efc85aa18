package mcp

import (
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Correction analyses and corrects documents.
	Correction driving.CorrectionService

	// Reports reads stored correction reports. Optional.
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Correction == nil {
		return ErrMissingCorrectionService
	}
	return nil
}
