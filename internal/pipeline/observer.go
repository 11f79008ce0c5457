package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// Event records one pipeline milestone. Stages emit events instead of
// logging through a side channel, so a caller can collect the full trace of
// a run alongside its results.
type Event struct {
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	At      time.Time      `json:"at"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Observer receives stage events. Implementations must be safe for use from
// a single pipeline goroutine; the pipeline itself never calls concurrently.
type Observer interface {
	OnEvent(Event)
}

// LogObserver forwards events to a slog logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an observer that logs events at info level.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// OnEvent implements Observer.
func (o *LogObserver) OnEvent(e Event) {
	attrs := make([]any, 0, 2+2*len(e.Fields))
	attrs = append(attrs, slog.String("stage", e.Stage))
	for k, v := range e.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	o.logger.Info(e.Message, attrs...)
}

// CollectObserver accumulates events in order. Safe for concurrent use so a
// caller may share one collector across parallel adapter goroutines.
type CollectObserver struct {
	mu     sync.Mutex
	events []Event
}

// NewCollectObserver creates an empty collector.
func NewCollectObserver() *CollectObserver {
	return &CollectObserver{}
}

// OnEvent implements Observer.
func (o *CollectObserver) OnEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

// Events returns a copy of the collected events.
func (o *CollectObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

// OnEvent implements Observer.
func (m MultiObserver) OnEvent(e Event) {
	for _, o := range m {
		if o != nil {
			o.OnEvent(e)
		}
	}
}

func emit(o Observer, stage, message string, fields map[string]any) {
	if o == nil {
		return
	}
	o.OnEvent(Event{Stage: stage, Message: message, At: time.Now(), Fields: fields})
}
