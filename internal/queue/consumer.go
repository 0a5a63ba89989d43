package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// auditLogFile is the file name inside the configured audit directory.
const auditLogFile = "auth-audit.log"

// StartAuditConsumer connects to RabbitMQ, declares the auth event
// queues (durable) and appends each message to the audit log under dir
// in a single-line format. It runs a reconnect loop with exponential
// backoff and never returns under normal operation; processing errors
// are logged and the offending message is rejected without requeue so
// the loop keeps moving.
func StartAuditConsumer(url, dir string, log *zap.Logger) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("audit-consumer: create log dir", zap.String("dir", dir), zap.Error(err))
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("audit-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, filepath.Join(dir, auditLogFile), log); err != nil {
			log.Warn("audit-consumer: consume loop ended", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, sinkPath string, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("audit-consumer: set QoS failed", zap.Error(err))
	}

	for _, name := range []string{UserRegisteredQueue, SessionsRevokedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	registered, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", UserRegisteredQueue, err)
	}
	revoked, err := ch.Consume(SessionsRevokedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", SessionsRevokedQueue, err)
	}

	// One open handle per connection; reconnects reopen it.
	sink, err := os.OpenFile(sinkPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = sink.Close() }()

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case d, ok = <-registered:
		case d, ok = <-revoked:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		line, err := formatLine(d.RoutingKey, d.Body)
		if err != nil {
			log.Warn("audit-consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		if _, err := sink.WriteString(line); err != nil {
			log.Warn("audit-consumer: write audit log failed", zap.Error(err))
			_ = d.Nack(false, true) // sink trouble, keep the message
			continue
		}
		_ = d.Ack(false)
	}
}

// formatLine renders one audit line for a delivery.
func formatLine(routingKey string, body []byte) (string, error) {
	switch routingKey {
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] user registered | user_id=%s | email=%s | project_id=%s | role=%s\n",
			ev.RegisteredAt, ev.UserID, ev.Email, ev.ProjectID, ev.Role), nil
	case SessionsRevokedQueue:
		var ev SessionsRevokedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] sessions revoked | user_id=%s\n", ev.RevokedAt, ev.UserID), nil
	default:
		return "", fmt.Errorf("unknown routing key %q", routingKey)
	}
}
