package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Queue names. One durable queue per event type; routing key equals the
// queue name on the default exchange.
const (
	UserRegisteredQueue  = "auth.user.registered"
	SessionsRevokedQueue = "auth.sessions.revoked"
)

// Publisher emits auth events to RabbitMQ. Publishing is best-effort:
// errors are logged and returned so callers can ignore them without
// interrupting the request flow.
type Publisher struct {
	URL string
	Log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

// PublishUserRegistered emits a UserRegisteredEvent.
func (p *Publisher) PublishUserRegistered(ctx context.Context, ev UserRegisteredEvent) error {
	return p.publish(ctx, UserRegisteredQueue, ev)
}

// PublishSessionsRevoked emits a SessionsRevokedEvent.
func (p *Publisher) PublishSessionsRevoked(ctx context.Context, ev SessionsRevokedEvent) error {
	return p.publish(ctx, SessionsRevokedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Log.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
