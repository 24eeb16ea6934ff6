package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	defaultSubjectPrefix = "wingo"
	maxReconnects        = 10
	reconnectWait        = 2 * time.Second
)

// Envelope is the JSON body published for every domain event
type Envelope struct {
	ID         string      `json:"id"`
	Type       event.Type  `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    event.Event `json:"payload"`
}

// subjectPublisher is the part of *nats.Conn the publisher needs
type subjectPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher forwards domain events to <prefix>.<event type>
type NATSPublisher struct {
	conn         subjectPublisher
	nc           *nats.Conn
	prefix       string
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// Connect opens a NATS connection that logs disconnects and reconnects
func Connect(url string, logger coreport.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("wingo-engine"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			fields := map[string]any{"url": url}
			if err != nil {
				fields["error"] = err.Error()
			}
			logger.Warn("NATS disconnected", fields)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", map[string]any{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", map[string]any{"url": url})
	return nc, nil
}

// NewNATSPublisher wraps an open connection
func NewNATSPublisher(nc *nats.Conn, prefix string, timeProvider coreport.TimeProvider, logger coreport.Logger) *NATSPublisher {
	p := newPublisher(nc, prefix, timeProvider, logger)
	p.nc = nc
	return p
}

func newPublisher(conn subjectPublisher, prefix string, timeProvider coreport.TimeProvider, logger coreport.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix, timeProvider: timeProvider, logger: logger}
}

// Subject returns the subject an event type is published on
func (p *NATSPublisher) Subject(t event.Type) string {
	return p.prefix + "." + string(t)
}

// Handle publishes e; it is meant to be registered with SubscribeAll.
// Broker failures are logged and never reach the caller.
func (p *NATSPublisher) Handle(_ context.Context, e event.Event) {
	env := Envelope{
		ID:         uuid.NewString(),
		Type:       e.Type(),
		OccurredAt: p.timeProvider.Now().UTC(),
		Payload:    e,
	}
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("Failed to encode event", map[string]any{"type": e.Type(), "error": err.Error()})
		return
	}

	subject := p.Subject(e.Type())
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("Failed to publish event", map[string]any{"subject": subject, "error": err.Error()})
		return
	}
	p.logger.Debug("Published event", map[string]any{"subject": subject, "size": len(data)})
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("draining NATS connection: %w", err)
	}
	return nil
}
