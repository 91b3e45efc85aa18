package driven

// ConfigStore holds flat, dot-keyed settings such as "thresholds.rotation"
// or "ocr.languages". Typed getters return the zero value when the key is
// missing or holds another type; callers use Get to tell the two apart.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat widens integers, so "rotation = 1" reads as 1.0.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save writes all values to storage.
	Save() error

	// Load replaces all values with the stored ones.
	Load() error

	// Path identifies the backing file.
	Path() string
}
