package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

func TestWatchCmd_RequiresOut(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"out" not set`)
}

func TestWatchCmd_OutInsideInbox(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	inbox := t.TempDir()

	_, err := execute(t, "watch", inbox, "--out", inbox)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchCmd_InvalidExporter(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch", t.TempDir(), "--out", t.TempDir(), "--exporter", "png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter")
}

func TestWatchCmd_OCRUnavailable(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ocrErr = domain.ErrOCRUnavailable

	_, err := execute(t, "watch", t.TempDir(), "--out", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}
