package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes audit events to a JetStream stream so they survive
// process restarts and can feed downstream compliance consumers.
type NATSSink struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NATSSinkConfig configures the JetStream audit sink.
type NATSSinkConfig struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222.
	URL string

	// Stream is the JetStream stream name. Created if missing.
	Stream string

	// Subject is the publish subject, which must match the stream's
	// subject filter.
	Subject string
}

// DefaultNATSSinkConfig returns the standard audit stream settings.
func DefaultNATSSinkConfig() NATSSinkConfig {
	return NATSSinkConfig{
		URL:     nats.DefaultURL,
		Stream:  "DOCSENTINEL_AUDIT",
		Subject: "docsentinel.audit.events",
	}
}

// NewNATSSink connects to NATS and ensures the audit stream exists.
func NewNATSSink(cfg NATSSinkConfig) (*NATSSink, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("docsentinel-audit"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(cfg.Stream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, fmt.Errorf("checking audit stream: %w", err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("creating audit stream: %w", err)
		}
	}

	return &NATSSink{nc: nc, js: js, subject: cfg.Subject}, nil
}

// Write publishes one event and waits for the JetStream ack.
func (s *NATSSink) Write(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	if _, err := s.js.Publish(s.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publishing audit event: %w", err)
	}
	return nil
}

// Close drains the connection, flushing pending publishes.
func (s *NATSSink) Close() error {
	return s.nc.Drain()
}
