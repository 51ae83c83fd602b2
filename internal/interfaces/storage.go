package interfaces

// StorageManager provides access to the application's storage services
type StorageManager interface {
	// KeyValueStorage returns the key/value store (API keys, variables)
	KeyValueStorage() KeyValueStorage

	// Close closes all storage connections
	Close() error
}
