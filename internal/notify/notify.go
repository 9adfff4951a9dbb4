// Package notify carries registration notifications from providers to a shared
// event sink.
package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/log"
	"github.com/zjrosen/mxview/internal/metrics"
	"github.com/zjrosen/mxview/internal/pubsub"
)

// Kind tags a notification as a resource becoming visible or going away.
type Kind string

const (
	Registered   Kind = "registered"
	Unregistered Kind = "unregistered"
)

// EventType maps the kind onto the pubsub event type.
func (k Kind) EventType() pubsub.EventType {
	if k == Unregistered {
		return pubsub.UnregisteredEvent
	}
	return pubsub.RegisteredEvent
}

// Notification is one delivered event.
type Notification struct {
	ID        uuid.UUID    `json:"id"`
	Kind      Kind         `json:"kind"`
	Name      objname.Name `json:"name"`
	Source    objname.Name `json:"source"`
	Sequence  uint64       `json:"sequence"`
	Timestamp time.Time    `json:"timestamp"`
}

// Sink receives notifications. Emit must not block for long.
type Sink interface {
	Emit(kind Kind, name objname.Name)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(kind Kind, name objname.Name)

func (f SinkFunc) Emit(kind Kind, name objname.Name) { f(kind, name) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Kind, objname.Name) {})

// BrokerSink stamps notifications and publishes them on a broker.
type BrokerSink struct {
	broker  *pubsub.Broker[Notification]
	source  objname.Name
	seq     atomic.Uint64
	metrics *metrics.Metrics
}

// NewBrokerSink publishes on broker, naming source as the emitter of every
// notification. m may be nil.
func NewBrokerSink(broker *pubsub.Broker[Notification], source objname.Name, m *metrics.Metrics) *BrokerSink {
	return &BrokerSink{broker: broker, source: source, metrics: m}
}

func (s *BrokerSink) Emit(kind Kind, name objname.Name) {
	n := Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Name:      name,
		Source:    s.source,
		Sequence:  s.seq.Add(1),
		Timestamp: time.Now(),
	}
	s.metrics.IncNotification(string(kind))
	delivered := s.broker.Publish(kind.EventType(), n)
	log.Debug(log.CatNotify, "emitted", "kind", kind, "name", name, "seq", n.Sequence, "delivered", delivered)
}

// Source returns the name stamped on every notification.
func (s *BrokerSink) Source() objname.Name { return s.source }

// Recorder keeps every emitted notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// Recorded is one notification captured by a Recorder.
type Recorded struct {
	Kind Kind
	Name objname.Name
}

func (r *Recorder) Emit(kind Kind, name objname.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Kind: kind, Name: name})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
