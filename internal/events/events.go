// Package events decouples the download orchestrator from whatever front
// end is attached to it. The orchestrator publishes progress, state and
// completion events; the CLI (or any future GUI) subscribes and renders
// them. Publishing never blocks: events to full subscriber buffers are
// dropped and counted.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	EventProgress    EventType = "progress"
	EventLog         EventType = "log"
	EventStateChange EventType = "state_change"
	EventError       EventType = "error"
	EventComplete    EventType = "complete"
)

// defaultBufferSize is the per-subscriber channel buffer. Large enough
// that a console front end never drops events during a normal run.
const defaultBufferSize = 256

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ProgressEvent reports per-measurement download progress.
type ProgressEvent struct {
	BaseEvent
	DeviceSerial string
	Measurement  string // measurement display name
	Index        int    // 1-based index within the filtered set
	Total        int
	Message      string
}

// LogEvent carries a human-readable message for the progress log.
type LogEvent struct {
	BaseEvent
	Message string
}

// StateChangeEvent reports orchestrator state transitions
// (Idle, Listing, Filtering, Downloading, Done, Failed).
type StateChangeEvent struct {
	BaseEvent
	OldState string
	NewState string
}

// ErrorEvent reports a failure. Fatal errors abort the run; non-fatal
// ones are per-measurement and the run continues.
type ErrorEvent struct {
	BaseEvent
	Measurement string
	Err         error
	Fatal       bool
}

// CompleteEvent summarizes a finished run.
type CompleteEvent struct {
	BaseEvent
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// EventBus manages event subscriptions and publishing.
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewEventBus creates a new event bus. bufferSize <= 0 selects the default.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. Events to
// full buffers are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// DroppedEventCount returns the number of events dropped due to full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// PublishLog is a convenience method for publishing log events.
func (eb *EventBus) PublishLog(message string) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Message:   message,
	})
}

// PublishProgress is a convenience method for publishing progress events.
func (eb *EventBus) PublishProgress(serial, measurement string, index, total int, message string) {
	eb.Publish(&ProgressEvent{
		BaseEvent:    BaseEvent{EventType: EventProgress, Time: time.Now()},
		DeviceSerial: serial,
		Measurement:  measurement,
		Index:        index,
		Total:        total,
		Message:      message,
	})
}

// PublishStateChange is a convenience method for publishing state transitions.
func (eb *EventBus) PublishStateChange(oldState, newState string) {
	eb.Publish(&StateChangeEvent{
		BaseEvent: BaseEvent{EventType: EventStateChange, Time: time.Now()},
		OldState:  oldState,
		NewState:  newState,
	})
}

// PublishError is a convenience method for publishing error events.
func (eb *EventBus) PublishError(measurement string, err error, fatal bool) {
	eb.Publish(&ErrorEvent{
		BaseEvent:   BaseEvent{EventType: EventError, Time: time.Now()},
		Measurement: measurement,
		Err:         err,
		Fatal:       fatal,
	})
}
