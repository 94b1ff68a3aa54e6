package jobs

import (
	"sync"
	"time"

	"whisper-batch/internal/domain"
)

// EventType classifies messages emitted by the controller.
type EventType string

const (
	EventTypeText          EventType = "text"
	EventTypeStatus        EventType = "status"
	EventTypeProgress      EventType = "progress"
	EventTypeTaskStatus    EventType = "task_status"
	EventTypeControls      EventType = "controls"
	EventTypeModelDownload EventType = "model_download"
	EventTypeResult        EventType = "result"
	EventTypeError         EventType = "error"
)

// Controls describes which user actions are currently available.
type Controls struct {
	CanAdd     bool   `json:"canAdd"`
	CanStart   bool   `json:"canStart"`
	CanPause   bool   `json:"canPause"`
	CanStop    bool   `json:"canStop"`
	PauseLabel string `json:"pauseLabel"`
}

// Event is a sequenced payload consumed by observers.
type Event struct {
	Seq         int64             `json:"seq"`
	Timestamp   time.Time         `json:"timestamp"`
	RunID       string            `json:"runId,omitempty"`
	Type        EventType         `json:"type"`
	RunStatus   domain.RunStatus  `json:"runStatus,omitempty"`
	TaskID      string            `json:"taskId,omitempty"`
	TaskName    string            `json:"taskName,omitempty"`
	TaskStatus  domain.TaskStatus `json:"taskStatus,omitempty"`
	ErrorKind   string            `json:"errorKind,omitempty"`
	Message     string            `json:"message,omitempty"`
	Percent     float64           `json:"percent,omitempty"`
	Total       int               `json:"total,omitempty"`
	Completed   int               `json:"completed,omitempty"`
	Elapsed     string            `json:"elapsed,omitempty"`
	OutputPath  string            `json:"outputPath,omitempty"`
	Controls    *Controls         `json:"controls,omitempty"`
	Command     string            `json:"command,omitempty"`
	Args        []string          `json:"args,omitempty"`
	ExitCode    int               `json:"exitCode,omitempty"`
	Stderr      string            `json:"stderr,omitempty"`
	ModelName   string            `json:"modelName,omitempty"`
	ShowLoading bool              `json:"showLoading,omitempty"`
}

// EventBus stores recent events for incremental reads and fans every event
// out, in publish order, to unbounded subscriber channels.
type EventBus struct {
	mu          sync.RWMutex
	nextSeq     int64
	maxEvents   int
	events      []Event
	subscribers map[*subscriber]struct{}
}

// NewEventBus creates an event bus with a bounded history buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents:   maxEvents,
		events:      make([]Event, 0, maxEvents),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Publish appends one event, assigns sequence and timestamp, and delivers
// it to every subscriber.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	for sub := range b.subscribers {
		sub.push(event)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Subscribe returns a channel receiving every event published from now on,
// in order, without ever blocking the publisher. The cancel func closes the
// channel; it is safe to call more than once.
func (b *EventBus) Subscribe() (<-chan Event, func()) {
	sub := newSubscriber()

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	go sub.pump()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, sub)
			b.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.out, cancel
}

// subscriber buffers events in a slice so slow readers never block Publish.
type subscriber struct {
	mu     sync.Mutex
	queue  []Event
	notify chan struct{}
	out    chan Event
	done   chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}
}

func (s *subscriber) push(event Event) {
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}
