package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

func TestMCPCmd_HasHTTPFlag(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestMCPCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "mcp", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestMCPCmd_RequiresCorrection(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	correctionService = nil

	_, err := execute(t, "mcp")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "correction service not configured")
}

func TestMCPCmd_OCRUnavailable(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ocrErr = domain.ErrOCRUnavailable

	_, err := execute(t, "mcp")

	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}
