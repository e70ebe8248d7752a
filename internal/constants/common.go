package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"

	// Environments
	ProdEnvironment  = "prod"
	DevEnvironment   = "dev"
	LocalEnvironment = "local"
	TestEnvironment  = "test"

	// ServiceName is attached to every production log line
	ServiceName = "merkleproof-service"

	// Default chain settings
	DefaultChainID = 1
)
