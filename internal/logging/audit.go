package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names a block list or frame event.
type AuditEventType string

const (
	AuditBlockAdd    AuditEventType = "block_add"
	AuditBlockRemove AuditEventType = "block_remove"
	AuditBlockMove   AuditEventType = "block_move"
	AuditBlockClear  AuditEventType = "block_clear"
	AuditFrameBuild  AuditEventType = "frame_build"
)

// AuditEvent is one structured audit entry.
type AuditEvent struct {
	EventType AuditEventType
	Target    string // block id, file path
	Success   bool
	Duration  time.Duration
	Error     string
	Message   string
	Fields    map[string]interface{}
}

// AuditLogger writes audit events under the "audit" name of the category's
// logger.
type AuditLogger struct {
	category Category
}

// Audit returns an audit writer for category.
func Audit(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes event at info level, or warn level when it failed.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsCategoryEnabled(a.category) {
		return
	}

	mu.RLock()
	z := base.Named(string(a.category)).Named("audit")
	mu.RUnlock()

	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.Bool("success", event.Success),
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Duration("duration", event.Duration))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	msg := event.Message
	if msg == "" {
		msg = string(event.EventType)
	}
	if event.Success {
		z.Info(msg, fields...)
	} else {
		z.Warn(msg, fields...)
	}
}

// BlockEvent records a block list mutation.
func (a *AuditLogger) BlockEvent(eventType AuditEventType, id string, err error) {
	event := AuditEvent{EventType: eventType, Target: id, Success: err == nil}
	if err != nil {
		event.Error = err.Error()
	}
	a.Log(event)
}

// FrameBuilt records a frame build with its block count.
func (a *AuditLogger) FrameBuilt(source string, blocks int, elapsed time.Duration) {
	a.Log(AuditEvent{
		EventType: AuditFrameBuild,
		Target:    source,
		Success:   true,
		Duration:  elapsed,
		Fields:    map[string]interface{}{"blocks": blocks},
	})
}
