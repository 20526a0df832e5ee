package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/ghuser/ticketdesk/pkg/logger"
)

// logAdapter routes Watermill logs into logger.Logger. Trace maps to Debug.
type logAdapter struct{ log logger.Logger }

func newLogAdapter(log logger.Logger) watermill.LoggerAdapter {
	return &logAdapter{log: log.With("component", "watermill")}
}

func (a *logAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldArgs(fields), "error", err)...)
}

func (a *logAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldArgs(fields)...)
}

func (a *logAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a *logAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a *logAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logAdapter{log: a.log.With(fieldArgs(fields)...)}
}

func fieldArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
