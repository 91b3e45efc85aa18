package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	_, ok := store.Get("thresholds.rotation")
	assert.False(t, ok)
}

func TestNewConfigStore_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[thresholds\nrotation ="), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_LoadsTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[thresholds]
rotation = 0.9
ordering = 1

[correction]
auto_correct = false
max_attempts = 5
time_budget = "2m"

[ocr]
engine = "tesseract"
languages = ["eng", "deu"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.InDelta(t, 0.9, store.GetFloat("thresholds.rotation"), 1e-9)
	assert.InDelta(t, 1.0, store.GetFloat("thresholds.ordering"), 1e-9)
	assert.False(t, store.GetBool("correction.auto_correct"))
	_, ok := store.Get("correction.auto_correct")
	assert.True(t, ok)
	assert.Equal(t, 5, store.GetInt("correction.max_attempts"))
	assert.Equal(t, "2m", store.GetString("correction.time_budget"))
	assert.Equal(t, []string{"eng", "deu"}, store.GetStringSlice("ocr.languages"))
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("render.dpi", "high"))

	assert.Equal(t, 0, store.GetInt("render.dpi"))
	assert.Zero(t, store.GetFloat("render.dpi"))
	assert.False(t, store.GetBool("render.dpi"))
	assert.Nil(t, store.GetStringSlice("render.dpi"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("thresholds.duplicate", 0.97))
	require.NoError(t, store.Set("render.dpi", 300))
	require.NoError(t, store.Set("documentai.project_id", "scans"))
	require.NoError(t, store.Set("ocr.languages", []string{"fra"}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[thresholds]")
	assert.Contains(t, string(data), "[documentai]")
	assert.NoFileExists(t, store.Path()+".tmp")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.InDelta(t, 0.97, reloaded.GetFloat("thresholds.duplicate"), 1e-9)
	assert.Equal(t, 300, reloaded.GetInt("render.dpi"))
	assert.Equal(t, "scans", reloaded.GetString("documentai.project_id"))
	assert.Equal(t, []string{"fra"}, reloaded.GetStringSlice("ocr.languages"))
}

func TestConfigStore_LoadReplacesState(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("render.dpi", 300))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[render]\ndpi = 200\n"), 0600))
	require.NoError(t, store.Load())
	assert.Equal(t, 200, store.GetInt("render.dpi"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
	_, ok := store.Get("render.dpi")
	assert.False(t, ok)
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"thresholds.rotation": 0.9,
		"thresholds.ordering": 0.8,
		"detectors.workers":   4,
		"top":                 "x",
	}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{"rotation": 0.9, "ordering": 0.8}, nested["thresholds"])
	assert.Equal(t, "x", nested["top"])
	assert.Equal(t, flat, flattenMap(nested, ""))
}

func TestNestMap_ScalarClash(t *testing.T) {
	flat := map[string]any{"render": "fast", "render.dpi": 300}

	nested := nestMap(flat)

	assert.Equal(t, flat, flattenMap(nested, ""))
}
