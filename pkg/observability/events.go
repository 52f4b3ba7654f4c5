package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event subjects.
const (
	TopicExportCompleted = "secassess.export.completed"
	TopicExportFailed    = "secassess.export.failed"
)

// ExportEvent is the payload of export subjects.
type ExportEvent struct {
	RecordID   string    `json:"record_id"`
	Format     string    `json:"format"`
	Size       int       `json:"size"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher emits events on a subject.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// NATSPublisher publishes JSON-encoded events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url with automatic
// reconnection.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("secassess"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish marshals event and publishes it on topic.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(topic, data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	_ = p.conn.Flush()
	p.conn.Close()
	return nil
}

// EventHooks implements [ExportHooks] by publishing an [ExportEvent] for
// every finished export. Publish failures are reported to OnError and
// never fail the export.
type EventHooks struct {
	NoopExportHooks
	pub     Publisher
	now     func() time.Time
	OnError func(error)
}

// NewEventHooks returns hooks publishing through pub.
func NewEventHooks(pub Publisher) *EventHooks {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &EventHooks{pub: pub, now: time.Now}
}

// OnExportComplete publishes to TopicExportCompleted, or TopicExportFailed
// when err is set.
func (h *EventHooks) OnExportComplete(ctx context.Context, id, format string, size int, d time.Duration, err error) {
	ev := ExportEvent{
		RecordID:   id,
		Format:     format,
		Size:       size,
		DurationMS: d.Milliseconds(),
		At:         h.now().UTC(),
	}
	topic := TopicExportCompleted
	if err != nil {
		topic = TopicExportFailed
		ev.Error = err.Error()
	}
	if perr := h.pub.Publish(ctx, topic, ev); perr != nil && h.OnError != nil {
		h.OnError(perr)
	}
}

var (
	_ Publisher   = NoopPublisher{}
	_ Publisher   = (*NATSPublisher)(nil)
	_ ExportHooks = (*EventHooks)(nil)
)
