package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPPublisher publishes AuthEvents as persistent JSON messages. A
// connection is dialed per publish; auth traffic is low enough that holding a
// channel open is not worth the reconnect handling.
type AMQPPublisher struct {
	URL string
	Log zerolog.Logger
}

func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Log: log.With().Str("component", "events").Logger()}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev AuthEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq dial failed")
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		p.Log.Warn().Err(err).Str("type", string(ev.Type)).Msg("publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func declare(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
