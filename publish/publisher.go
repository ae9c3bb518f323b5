// Package publish announces written investigation files on NATS.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Header names carried by every published message.
const (
	HeaderFile       = "Isatab-File"
	HeaderIdentifier = "Isatab-Identifier"
	HeaderRunID      = "Isatab-Run-Id"
)

// ErrNoSubject is returned when a publisher is created without a subject.
var ErrNoSubject = errors.New("publish subject is required")

// msgPublisher is the part of *nats.Conn used by Publisher.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher sends investigation file contents to a NATS subject.
type Publisher struct {
	conn    msgPublisher
	subject string
	logger  *slog.Logger
	nc      *nats.Conn
	close   func()
}

// Connect dials the NATS server at url and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	if subject == "" {
		return nil, ErrNoSubject
	}
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(url,
		nats.Name("isatab"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := newPublisher(nc, subject, logger)
	p.nc = nc
	p.close = func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("NATS drain failed", "error", err)
			nc.Close()
		}
	}
	return p, nil
}

func newPublisher(conn msgPublisher, subject string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Message describes one written investigation file.
type Message struct {
	RunID      string
	Identifier string
	FileName   string
	Data       []byte
}

// Publish sends msg. The file contents form the payload; the identifiers
// travel as headers.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := nats.NewMsg(p.subject)
	m.Data = msg.Data
	m.Header.Set(HeaderFile, msg.FileName)
	m.Header.Set(HeaderIdentifier, msg.Identifier)
	if msg.RunID != "" {
		m.Header.Set(HeaderRunID, msg.RunID)
	}

	if err := p.conn.PublishMsg(m); err != nil {
		return fmt.Errorf("publish %s: %w", msg.FileName, err)
	}

	p.logger.Debug("Published investigation",
		"subject", p.subject,
		"file", msg.FileName,
		"bytes", len(msg.Data))
	return nil
}

// Subject returns the subject messages are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// JetStream returns a JetStream context on the publisher's connection.
func (p *Publisher) JetStream() (jetstream.JetStream, error) {
	if p.nc == nil {
		return nil, errors.New("publisher has no NATS connection")
	}
	return jetstream.New(p.nc)
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}
