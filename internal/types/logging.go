package types

// LogLevel controls logger verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunMode is the deployment mode the service runs in.
type RunMode string

const (
	RunModeLocal RunMode = "local"
	RunModeDev   RunMode = "dev"
	RunModeProd  RunMode = "prod"
)
