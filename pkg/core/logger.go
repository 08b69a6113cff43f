package core

// Logger receives progress messages from the renderer
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything. Handy for tests and benchmarks.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
