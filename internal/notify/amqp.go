// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	retryDelay     = time.Second
)

// AMQPPublisher publishes events to a durable RabbitMQ queue and can
// consume them back.
type AMQPPublisher struct {
	conn  *amqp.Connection
	queue string

	mu sync.Mutex // guards ch; channels are not safe for concurrent publishing
	ch *amqp.Channel
}

// DialAMQP connects to the broker and declares the queue.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}

	slog.Info("amqp connected", "queue", queue)
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", ev.Type, err)
	}
	return nil
}

// Consume delivers queued events to handle until ctx is done. A message
// is acked when handle succeeds and requeued when it fails; messages that
// do not decode are dropped.
func (p *AMQPPublisher) Consume(ctx context.Context, handle func(context.Context, Event) error) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, p.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume %s: %w", p.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("amqp delivery channel closed")
			}
			p.deliver(ctx, d, handle)
		}
	}
}

func (p *AMQPPublisher) deliver(ctx context.Context, d amqp.Delivery, handle func(context.Context, Event) error) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		slog.Error("dropping malformed event", "message_id", d.MessageId, "error", err)
		d.Nack(false, false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		slog.Warn("event delivery failed, requeueing", "event", ev.Type, "id", ev.ID, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
		}
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ch.Close()
	return p.conn.Close()
}
