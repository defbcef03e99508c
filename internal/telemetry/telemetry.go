// Package telemetry implements the Telemetry Logger (spec §4.13, COMPONENT
// DESIGN table): typed pipeline events plus a set of counters, logged in
// the teacher's bracketed-stage-tag style (e.g. internal/agent/decide.go's
// "[Decide] ...").
package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxEvents bounds the in-memory event history so a long-lived Supervisor
// session doesn't grow its telemetry log without limit; the oldest event is
// dropped once the buffer is full.
const maxEvents = 500

// Event is one recorded occurrence during a pipeline run.
type Event struct {
	ID        string
	Stage     string // Intercept, Analyze, Detect, Correct, Trigger, Override, Expand, Build, Firewall, Emit
	ToolName  string
	SessionID string
	Message   string
	Data      map[string]any
	Timestamp time.Time
}

// Logger records events and maintains named counters. Counters are
// per-Logger (spec §5: "Telemetry counters are per-Supervisor"). Its
// methods are safe for concurrent use; Supervisors that share one Logger
// share its counters.
type Logger struct {
	mu       sync.Mutex
	events   []Event
	counters map[string]int64
	now      func() time.Time
}

// NewLogger returns an empty Logger. now defaults to time.Now; tests may
// override it for deterministic timestamps.
func NewLogger(now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{counters: make(map[string]int64), now: now}
}

// Record appends a new Event for stage and increments both the stage's
// counter and the "total" counter.
func (l *Logger) Record(stage, toolName, sessionID, message string, data map[string]any) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Stage:     stage,
		ToolName:  toolName,
		SessionID: sessionID,
		Message:   message,
		Data:      data,
		Timestamp: l.now(),
	}

	l.mu.Lock()
	l.events = append(l.events, ev)
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
	l.counters[stage]++
	l.counters["total"]++
	l.mu.Unlock()

	if toolName != "" {
		log.Printf("[Telemetry][%s] %s: %s", stage, toolName, message)
	} else {
		log.Printf("[Telemetry][%s] %s", stage, message)
	}
	return ev
}

// Count increments an arbitrary named counter not tied to a recorded event
// (e.g. "firewall_block", "cache_hit").
func (l *Logger) Count(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counters[name]++
}

// Stats returns a snapshot copy of every counter (spec §4.13: get_stats).
func (l *Logger) Stats() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int64, len(l.counters))
	for k, v := range l.counters {
		out[k] = v
	}
	return out
}

// Reset clears every counter (spec §4.13: reset_stats). Recorded events are
// left untouched since the operation is named for statistics specifically.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counters = make(map[string]int64)
}

// Events returns a snapshot copy of the recorded event history, oldest
// first.
func (l *Logger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
