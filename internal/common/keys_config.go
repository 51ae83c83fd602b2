package common

// KeysDirConfig configures key/value file loading at startup.
type KeysDirConfig struct {
	// Dir is the directory containing key/value files in TOML format.
	// Each TOML file has [key_name] entries with 'value' and optional
	// 'description' fields. Default: ./keys
	Dir string `toml:"dir"`
}
