// Package audit emits structured security-log events for mutating
// operations. Recording is fire-and-forget: a failing sink must never abort
// the business operation it describes.
package audit

import (
	"go.uber.org/zap"
)

type Event struct {
	Actor       string
	Action      string
	Description string
	Details     map[string]interface{}
}

type Recorder interface {
	Record(event Event)
}

// ZapRecorder writes audit events to a dedicated named zap logger.
type ZapRecorder struct {
	logger *zap.Logger
}

func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	return &ZapRecorder{logger: logger.Named("audit")}
}

func (r *ZapRecorder) Record(event Event) {
	fields := []zap.Field{
		zap.String("actor", event.Actor),
		zap.String("action", event.Action),
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}
	r.logger.Info(event.Description, fields...)
}

// NopRecorder discards every event. Used in tests.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}
