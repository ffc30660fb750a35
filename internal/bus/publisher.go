// Package bus publishes company events to NATS so other services can react
// to activity and target changes.
package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/carbontrack/carbontrack-server/internal/events"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "carbontrack"

// ErrNotConnected is returned by Ping while the connection is down.
var ErrNotConnected = errors.New("nats: not connected")

// Publisher sends events to "<prefix>.<company_id>.<event_type>" as msgpack.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

// Connect dials url and returns a Publisher. The connection reconnects
// forever; publishes made while disconnected are buffered by the client.
func Connect(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	opts := []nats.Option{
		nats.Name("carbontrack-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("nats connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info("connected to nats", "url", nc.ConnectedUrl(), "prefix", prefix)

	return &Publisher{nc: nc, prefix: prefix, logger: logger}, nil
}

// Emit publishes evt. Heartbeats and events without a company are skipped.
// Failures are logged, never returned.
func (p *Publisher) Emit(evt events.Event) {
	if evt.Type == events.Heartbeat || evt.CompanyID == "" {
		return
	}

	payload, err := Encode(evt)
	if err != nil {
		p.logger.Error("encode event", "event_type", evt.Type, "error", err)
		return
	}

	subject := Subject(p.prefix, evt)
	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Warn("publish event", "subject", subject, "error", err)
	}
}

// Ping reports whether the connection is currently usable.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.nc.IsConnected() {
		return fmt.Errorf("%w (status %s)", ErrNotConnected, p.nc.Status())
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}

// Subject returns the subject evt is published on. Characters NATS treats
// specially inside a token are replaced in the company id.
func Subject(prefix string, evt events.Event) string {
	company := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, evt.CompanyID)
	return prefix + "." + company + "." + string(evt.Type)
}

// Encode serializes evt as msgpack. Payload structs without msgpack tags
// are encoded using their json tags.
func Encode(evt events.Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(evt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a payload produced by Encode. Data is decoded generically.
func Decode(payload []byte) (events.Event, error) {
	var evt events.Event
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&evt); err != nil {
		return events.Event{}, err
	}
	return evt, nil
}

var _ events.Emitter = (*Publisher)(nil)
