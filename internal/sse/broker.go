// Package sse fans out content and sync notifications to browser clients
// over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	keepAlive   = 25 * time.Second
	retryMillis = 3000
)

// Event types.
const (
	ContentCreated = "content.created"
	ContentUpdated = "content.updated"
	ContentDeleted = "content.deleted"
	StatusChanged  = "status.changed"
	SyncPulled     = "sync.pulled"
	SyncPushed     = "sync.pushed"
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ContentChange is the payload of content.* events.
type ContentChange struct {
	Category string `json:"category"`
	Stem     string `json:"stem"`
	Path     string `json:"path"`
}

type contentReq struct {
	kind   string
	change ContentChange
}

// Broker holds SSE clients and broadcasts events to them.
//
// A single event loop owns the client set and the status throttle timestamp;
// public methods talk to it over channels.
type Broker struct {
	statusMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	contentCh     chan contentReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. statusThrottle is the minimum gap between two
// status.changed events; zero or less means two seconds.
func NewBroker(statusThrottle time.Duration) *Broker {
	if statusThrottle <= 0 {
		statusThrottle = 2 * time.Second
	}

	b := &Broker{
		statusMin:     statusThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		contentCh:     make(chan contentReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastStatus time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.contentCh:
			switch req.kind {
			case "created":
				broadcast(Event{Type: ContentCreated, Data: req.change})
			case "updated":
				broadcast(Event{Type: ContentUpdated, Data: req.change})
			case "deleted":
				broadcast(Event{Type: ContentDeleted, Data: req.change})
			default:
				continue
			}

			now := time.Now()
			if now.Sub(lastStatus) >= b.statusMin {
				lastStatus = now
				broadcast(Event{Type: StatusChanged, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// offer hands v to the event loop. It reports false once the broker has
// stopped.
func offer[T any](b *Broker, ch chan T, v T) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-b.stopped:
		return false
	}
}

// Subscribe registers a client. The returned channel is closed when the
// client is unsubscribed or the broker stops.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if !offer(b, b.subscribeCh, ch) {
		close(ch)
	}
	return ch
}

// Unsubscribe drops a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	offer(b, b.unsubscribeCh, ch)
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !offer(b, b.countReqCh, resp) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for all connected clients.
func (b *Broker) Publish(event Event) {
	offer(b, b.publishCh, event)
}

// PublishContentEvent publishes a content.* event for kind ("created",
// "updated" or "deleted") followed by a throttled status.changed.
func (b *Broker) PublishContentEvent(kind, category, stem string) {
	offer(b, b.contentCh, contentReq{kind: kind, change: ContentChange{
		Category: category,
		Stem:     stem,
		Path:     category + "/" + stem + ".md",
	}})
}

// PublishSync publishes sync.pulled or sync.pushed with the operation result
// as payload. Sync events are never throttled.
func (b *Broker) PublishSync(eventType string, result any) {
	b.Publish(Event{Type: eventType, Data: result})
}

// ServeHTTP streams events to one client until it disconnects or the broker
// stops. Idle streams get a comment line every keepAlive.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}
