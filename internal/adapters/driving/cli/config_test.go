package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

func TestConfigList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values["render.dpi"] = "300"

	out, err := execute(t, "config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "render.dpi           300  (default 150)")
	assert.Contains(t, out, "thresholds.rotation  0.8\n")
}

func TestConfigGet(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "get", "thresholds.rotation")

	require.NoError(t, err)
	assert.Equal(t, "0.8\n", out)
}

func TestConfigGet_UnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "get", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSet(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "set", "render.dpi", "200")

	require.NoError(t, err)
	assert.Contains(t, out, "render.dpi = 200")
	assert.Equal(t, "200", ts.settings.values["render.dpi"])
}

func TestConfigSet_Invalid(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "unknown.key", "1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSet_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "render.dpi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}
