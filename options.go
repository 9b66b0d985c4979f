package nexusflow

import "log/slog"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for the pipeline and everything it owns.
var WithLogger = func(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithChannelCapacity overrides the capacity of every edge channel.
// Negative means unbounded.
var WithChannelCapacity = func(capacity int) Option {
	return func(p *Pipeline) {
		p.capacity = capacity
	}
}

// WithMetrics attaches a counter set to the pipeline's dispatchers.
var WithMetrics = func(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NullWriter is a writer that discards all data.
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger creates a logger that discards all output.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
