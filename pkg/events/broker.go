package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 100

// Event is a published event as delivered to Broker subscribers.
type Event struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
	Seq   uint64          `json:"seq"`
}

// Broker is an in-process Publisher that fans events out to subscribers,
// typically one per open SSE connection. Delivery never blocks the
// publisher: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[*subscription]struct{}
	seq     uint64
	closed  bool
	bufSize int
	logger  *log.Logger
}

type subscription struct {
	patterns []string
	ch       chan Event
	once     sync.Once
}

// NewBroker creates a broker. A nil logger disables drop warnings.
func NewBroker(logger *log.Logger) *Broker {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Broker{
		subs:    make(map[*subscription]struct{}),
		bufSize: DefaultBufferSize,
		logger:  logger,
	}
}

// Subscribe registers a subscriber for the topics matching any of the
// patterns (NATS wildcard syntax, e.g. "roadmap.node.*" or "roadmap.>").
// No patterns means every topic. The subscription ends when ctx is done or
// the returned cancel function is called; the channel is then closed.
func (b *Broker) Subscribe(ctx context.Context, patterns ...string) (<-chan Event, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, fmt.Errorf("broker is closed")
	}
	sub := &subscription{patterns: patterns, ch: make(chan Event, b.bufSize)}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() { b.unsubscribe(sub) }
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return sub.ch, cancel, nil
}

func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
}

// Publish encodes event and delivers it to every matching subscriber.
func (b *Broker) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("broker is closed")
	}
	b.seq++
	ev := Event{Topic: topic, Data: data, Seq: b.seq}
	for sub := range b.subs {
		if !sub.matches(topic) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Warn("subscriber buffer full, dropping event", "topic", topic, "seq", ev.Seq)
		}
	}
	return nil
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Publishing after Close fails.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.once.Do(func() { close(sub.ch) })
	}
	b.subs = make(map[*subscription]struct{})
	return nil
}

func (s *subscription) matches(topic string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, p := range s.patterns {
		if MatchTopic(p, topic) {
			return true
		}
	}
	return false
}

// MatchTopic reports whether topic matches pattern using NATS subject
// rules: "*" matches one token and a trailing ">" matches one or more.
func MatchTopic(pattern, topic string) bool {
	pt := strings.Split(pattern, ".")
	tt := strings.Split(topic, ".")
	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(tt) > i
		}
		if i >= len(tt) {
			return false
		}
		if p != "*" && p != tt[i] {
			return false
		}
	}
	return len(pt) == len(tt)
}

// WriteSSE writes an event in Server-Sent Events framing:
// "id: <seq>\nevent: <topic>\ndata: <json>\n\n".
func WriteSSE(w io.Writer, e Event) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Seq, e.Topic, e.Data)
	return err
}
