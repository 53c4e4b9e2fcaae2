// Package notify publishes availability change events to MQTT so other
// services (buddy matching, reminders) can react without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Publish(string, []byte) error { return nil }

type MQTTPublisher struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewMQTTPublisher connects to brokerURL ("tcp://host:1883").
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTPublisher{client: client}, nil
}

func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// AvailabilityChanged is the payload on availability/<user_id>/changed.
type AvailabilityChanged struct {
	Action         string    `json:"action"`
	UserID         int       `json:"user_id"`
	AvailabilityID int       `json:"availability_id"`
	DayOfWeek      string    `json:"day_of_week,omitempty"`
	StartTime      string    `json:"start_time,omitempty"`
	EndTime        string    `json:"end_time,omitempty"`
	At             time.Time `json:"at"`
}

func AvailabilityTopic(userID int) string {
	return fmt.Sprintf("availability/%d/changed", userID)
}

// PublishAvailability encodes ev and publishes it. Failures are logged, never
// returned: a lost event must not fail the request that caused it.
func PublishAvailability(p Publisher, ev AvailabilityChanged) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("could not encode availability event")
		return
	}
	if err := p.Publish(AvailabilityTopic(ev.UserID), payload); err != nil {
		log.Warn().Err(err).Int("user_id", ev.UserID).Str("action", ev.Action).Msg("availability event not published")
	}
}
