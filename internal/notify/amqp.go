package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/models"
)

const (
	ExchangeName = "garage.notifications"
	ExchangeKind = "topic"
)

// RoutingKey is the AMQP routing key for a notification type.
func RoutingKey(t models.NotificationType) string {
	return "notification." + string(t)
}

// amqpChannel is the part of *amqp.Channel the notifier uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes notifications to a RabbitMQ topic exchange.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel amqpChannel
}

// NewAMQPNotifier dials url and declares the notification exchange.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: ch}, nil
}

func (a *AMQPNotifier) Send(ctx context.Context, n models.Notification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}

	key := RoutingKey(n.Type)
	if err := a.channel.PublishWithContext(ctx, ExchangeName, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.SentAt,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	log.WithFields(log.Fields{
		"exchange":   ExchangeName,
		"key":        key,
		"booking_id": n.BookingID,
	}).Debug("Published notification")
	return nil
}

// Close releases the channel and connection.
func (a *AMQPNotifier) Close() error {
	if a.channel != nil {
		a.channel.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
