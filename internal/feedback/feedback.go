// internal/feedback/feedback.go

// Package feedback carries user-facing status out of the upload pipeline.
// The orchestrator never returns errors to its caller; everything the user
// should see flows through a Reporter.
package feedback

import "go.uber.org/zap"

// Status is one user-visible outcome line for an orchestration run.
type Status struct {
	// RunID identifies the orchestration attempt the status belongs to.
	RunID string
	// OK distinguishes success from failure statuses.
	OK bool
	// Message is already phrased for the user.
	Message string
}

// Reporter consumes statuses. Implementations must tolerate concurrent calls.
type Reporter interface {
	Report(s Status)
}

// ZapReporter logs statuses through a zap logger.
type ZapReporter struct {
	logger *zap.Logger
}

func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger}
}

func (r *ZapReporter) Report(s Status) {
	fields := []zap.Field{zap.String("run_id", s.RunID)}
	if s.OK {
		r.logger.Info(s.Message, fields...)
	} else {
		r.logger.Warn(s.Message, fields...)
	}
}

// Func adapts a plain function to the Reporter interface.
type Func func(s Status)

func (f Func) Report(s Status) { f(s) }

// Multi fans a status out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(s Status) {
	for _, r := range m {
		r.Report(s)
	}
}
