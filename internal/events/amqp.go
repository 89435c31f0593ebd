package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the part of *amqp.Channel used for publishing.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// AMQPBroker publishes events to a RabbitMQ topic exchange keyed by dashboard
// topic. Each subscription gets its own exclusive, auto-deleted queue.
// A closed publish channel is reopened on the next Publish.
type AMQPBroker struct {
	conn     *amqp.Connection
	exchange string

	mu      sync.Mutex
	channel publishChannel
	open    func() (publishChannel, error)
}

// NewAMQPBroker dials RabbitMQ and declares the events exchange.
func NewAMQPBroker(url, exchange string) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	log.WithField("exchange", exchange).Info("Connected to RabbitMQ event broker")
	b := &AMQPBroker{conn: conn, exchange: exchange, channel: channel}
	b.open = func() (publishChannel, error) {
		return b.conn.Channel()
	}
	return b, nil
}

// reopen replaces the publish channel. Callers hold b.mu.
func (b *AMQPBroker) reopen() error {
	if b.channel != nil {
		b.channel.Close()
	}
	channel, err := b.open()
	if err != nil {
		b.channel = nil
		return fmt.Errorf("reopen amqp channel: %w", err)
	}
	b.channel = channel
	log.WithField("exchange", b.exchange).Info("Reopened RabbitMQ publish channel")
	return nil
}

func (b *AMQPBroker) Publish(ctx context.Context, topic string, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Type:         string(evt.Type),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channel == nil || b.channel.IsClosed() {
		if err := b.reopen(); err != nil {
			return err
		}
	}
	err = b.channel.PublishWithContext(ctx, b.exchange, topic, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		if err := b.reopen(); err != nil {
			return err
		}
		err = b.channel.PublishWithContext(ctx, b.exchange, topic, false, false, msg)
	}
	return err
}

func (b *AMQPBroker) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	channel, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, topic, b.exchange, false, nil); err != nil {
		channel.Close()
		return nil, fmt.Errorf("bind queue to %s: %w", topic, err)
	}

	deliveries, err := channel.ConsumeWithContext(ctx,
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("consume %s: %w", queue.Name, err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer channel.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal(d.Body, &evt); err != nil {
					log.WithError(err).Warn("Dropping malformed event")
					continue
				}
				select {
				case out <- evt:
				default:
					log.WithField("topic", topic).Warn("Subscriber buffer full, dropping event")
				}
			}
		}
	}()
	return out, nil
}

func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.channel != nil {
		b.channel.Close()
	}
	return b.conn.Close()
}
