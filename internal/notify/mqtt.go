package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/models"
)

// TopicPrefix is prepended to the notification type to form the MQTT topic.
const TopicPrefix = "garage/notifications/"

const mqttTimeout = 5 * time.Second

var errMQTTTimeout = errors.New("mqtt operation timed out")

// mqttPublisher is the part of mqtt.Client the notifier uses.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes notifications to an MQTT broker with QoS 1.
type MQTTNotifier struct {
	client mqttPublisher
	close  func()
}

// NewMQTTNotifier connects to broker (e.g. tcp://localhost:1883).
func NewMQTTNotifier(broker, clientID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect()); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	log.WithField("broker", broker).Info("Connected to MQTT broker")

	return &MQTTNotifier{
		client: client,
		close:  func() { client.Disconnect(250) },
	}, nil
}

// Topic is the MQTT topic for a notification type.
func Topic(t models.NotificationType) string {
	return TopicPrefix + string(t)
}

func (m *MQTTNotifier) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(n)
	if err != nil {
		return err
	}
	if err := wait(m.client.Publish(Topic(n.Type), 1, false, body)); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTTNotifier) Close() error {
	if m.close != nil {
		m.close()
	}
	return nil
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(mqttTimeout) {
		return errMQTTTimeout
	}
	return token.Error()
}
