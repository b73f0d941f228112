package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment
	// unless the server runs with an in-memory store.
	DefaultDatabaseURL = ""
)
