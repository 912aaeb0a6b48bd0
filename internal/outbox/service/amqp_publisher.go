// Package service provides message broker access for outbox delivery.
package service

import (
	"context"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/questionit/api/internal/errors"
)

// AMQPPublisher publishes messages to durable queues over a single lazily opened
// connection. A failed publish drops the connection so the next call redials.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

// NewAMQPPublisher creates a new AMQPPublisher. No connection is opened until the
// first publish.
func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		logger:   logger,
		declared: make(map[string]bool),
	}
}

// Publish declares queue as durable on first use and sends msg to it through the
// default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	if !p.declared[queue] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return apperrors.Wrap(err, "failed to declare queue")
		}
		p.declared[queue] = true
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.reset()
		return apperrors.Wrap(err, "failed to publish message")
	}
	return nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to amqp broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, apperrors.Wrap(err, "failed to open amqp channel")
	}

	if p.logger != nil {
		p.logger.Info("connected to amqp broker")
	}
	p.conn = conn
	p.ch = ch
	return ch, nil
}

// reset closes and forgets the current connection. Callers hold mu.
func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch = nil
	p.conn = nil
	p.declared = make(map[string]bool)
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.ch = nil
	p.conn = nil
	return err
}
