// Package mcp provides an MCP (Model Context Protocol) server adapter for pagefix.
// It lets AI assistants analyse and correct scanned documents and read
// the stored correction reports.
package mcp

import "errors"

// ErrMissingCorrectionService is returned when the correction service is not provided.
var ErrMissingCorrectionService = errors.New("mcp: correction service is required")
