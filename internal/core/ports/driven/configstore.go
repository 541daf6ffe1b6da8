package driven

// ConfigStore reads and writes application settings addressed by
// dot-notation keys such as "sync.interval". Implementations own
// persistence and type coercion; typed getters return the zero value
// rather than an error when a key is missing or mistyped.
type ConfigStore interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the string value for key, or "".
	GetString(key string) string

	// GetInt returns the integer value for key, or 0.
	GetInt(key string) int

	// GetFloat returns the floating-point value for key, or 0.
	// Integer values are widened.
	GetFloat(key string) float64

	// GetBool returns the boolean value for key, or false.
	GetBool(key string) bool

	// GetStringSlice returns the string slice value for key, or nil.
	GetStringSlice(key string) []string

	// Set stores a value under key and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the location of the backing configuration file.
	Path() string
}
