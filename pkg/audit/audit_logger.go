package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audited scheduling event
type EventType string

const (
	EventInterviewCreated     EventType = "interview_created"
	EventInterviewScheduled   EventType = "interview_scheduled"
	EventInterviewCancelled   EventType = "interview_cancelled"
	EventInterviewRescheduled EventType = "interview_rescheduled"
	EventInterviewCompleted   EventType = "interview_completed"
	EventBookingConflict      EventType = "booking_conflict"
	EventExceptionCreated     EventType = "availability_exception_created"
	EventScheduleChanged      EventType = "availability_schedule_changed"
)

// Event is a single audit record. Interview transitions carry From/To status.
type Event struct {
	Timestamp   time.Time              `json:"timestamp"`
	Service     string                 `json:"service"`
	Environment string                 `json:"env"`
	Level       string                 `json:"level"`
	Event       EventType              `json:"event"`
	InterviewID string                 `json:"interview_id,omitempty"`
	EmployerID  string                 `json:"employer_id,omitempty"`
	ActorID     string                 `json:"actor_id,omitempty"`
	FromStatus  string                 `json:"from_status,omitempty"`
	ToStatus    string                 `json:"to_status,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// Logger writes audit events through zap and optionally persists them.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	persistFunc func(ctx context.Context, event Event) error
	pending     sync.WaitGroup
}

// NewLogger builds a production zap logger for audit events
func NewLogger(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Containers collect stdout
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// NewNop returns a Logger that discards everything. Used by tests and tools.
func NewNop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

// SetPersistFunc sets the function to persist events to database
func (l *Logger) SetPersistFunc(f func(ctx context.Context, event Event) error) {
	l.persistFunc = f
}

// Log logs an audit event. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = l.serviceName
	event.Environment = l.environment

	level := zapcore.InfoLevel
	if event.Event == EventBookingConflict {
		level = zapcore.WarnLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.InterviewID != "" {
		fields = append(fields, zap.String("interview_id", event.InterviewID))
	}
	if event.EmployerID != "" {
		fields = append(fields, zap.String("employer_id", event.EmployerID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FromStatus != "" || event.ToStatus != "" {
		fields = append(fields, zap.String("from_status", event.FromStatus), zap.String("to_status", event.ToStatus))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)

	if l.persistFunc != nil {
		l.pending.Add(1)
		go func(e Event) {
			defer l.pending.Done()
			// The request context may already be cancelled once the response is written
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := l.persistFunc(ctx, e); err != nil {
				l.zapLogger.Error("Failed to persist audit event", zap.Error(err))
			}
		}(event)
	}
}

// Transition records an interview moving from one status to another.
func (l *Logger) Transition(ctx context.Context, event EventType, interviewID, employerID, actorID, from, to string, details map[string]interface{}) {
	l.Log(ctx, Event{
		Event:       event,
		InterviewID: interviewID,
		EmployerID:  employerID,
		ActorID:     actorID,
		FromStatus:  from,
		ToStatus:    to,
		Details:     details,
	})
}

// Sync waits for in-flight persists, then flushes buffered log entries.
// Call it after the HTTP server has stopped accepting requests.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	l.pending.Wait()
	return l.zapLogger.Sync()
}
