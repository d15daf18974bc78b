// Package nats announces uploaded documents on a NATS subject so downstream
// indexers can pick them up without polling the remote store.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/infrastructure/resilience"
)

const DefaultSubject = "docshelf.documents.uploaded"

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Executor       *resilience.Executor
}

type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func Connect(url, subject string, opts Options) (*Publisher, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 2 * time.Second
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = time.Second
	}
	if opts.MaxReconnects <= 0 {
		opts.MaxReconnects = 10
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docshelf"),
		nats.Timeout(opts.ConnectTimeout),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "connect nats", err)
	}
	return &Publisher{conn: conn, subject: subject, executor: opts.Executor}, nil
}

// Close flushes buffered events before closing the connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		slog.Warn("nats_flush_failed", "error", err)
	}
	p.conn.Close()
}

func (p *Publisher) PublishUploaded(ctx context.Context, event domain.UploadEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	call := func(context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	if p.executor != nil {
		err = p.executor.Do(ctx, "nats.publish", classifyNATSError, call)
	} else {
		err = call(ctx)
	}
	if err != nil && (classifyNATSError(err).Retry || resilience.IsCircuitOpen(err)) {
		return domain.WrapError(domain.ErrTemporary, "publish upload event", err)
	}
	return err
}

func encodeEvent(event domain.UploadEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode upload event", err)
	}
	return payload, nil
}
