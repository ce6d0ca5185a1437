package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink forwards bus events to a RabbitMQ topic exchange, routed by event type.
type AMQPSink struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
}

// NewAMQPSink connects to the broker, retrying per policy, and declares the exchange.
func NewAMQPSink(ctx context.Context, url, exchange string, policy RetryPolicy, logger *zerolog.Logger) (*AMQPSink, error) {
	conn, err := dialWithRetry(ctx, amqp.Dial, url, policy, logger)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPSink{conn: conn, ch: ch, exchange: exchange}, nil
}

func dialWithRetry(
	ctx context.Context,
	dial func(url string) (*amqp.Connection, error),
	url string,
	policy RetryPolicy,
	logger *zerolog.Logger,
) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		conn, err := dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt > policy.MaxRetries {
			break
		}

		delay := policy.NextDelay(attempt)
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("rabbitmq dial failed")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dial rabbitmq: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("dial rabbitmq: %w", lastErr)
}

// Handle is an EventHandler; subscribe it with AllEvents.
func (s *AMQPSink) Handle(event *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return s.ch.PublishWithContext(ctx, s.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.CreatedAt,
		Type:         event.Type,
		Body:         event.Payload,
	})
}

func (s *AMQPSink) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
