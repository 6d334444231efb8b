package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wilsondesouza/AlertSystem/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTSink publishes alert events to an MQTT topic
type MQTTSink struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTSink connects to the broker. The client id gets a random suffix so
// several monitors can share one broker.
func NewMQTTSink(cfg *config.MQTTConfig) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8]))

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newMQTTSink(client, cfg.Topic, cfg.QoS), nil
}

func newMQTTSink(client mqtt.Client, topic string, qos byte) *MQTTSink {
	return &MQTTSink{
		client: client,
		topic:  topic,
		qos:    qos,
	}
}

// Name implements Sink
func (s *MQTTSink) Name() string {
	return "mqtt"
}

// PublishEvent implements Sink. It waits for the broker until ctx is done.
func (s *MQTTSink) PublishEvent(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	token := s.client.Publish(s.topic, s.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to topic %s: %w", s.topic, ctx.Err())
	}

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", s.topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
