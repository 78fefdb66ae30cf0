package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/gridserve/internal/config"
	"github.com/jgoulah/gridserve/internal/consumptionpb"
)

const publishTimeout = 10 * time.Second

// Publisher sends consumption records to an MQTT broker
type Publisher struct {
	client mqtt.Client
	topic  string
}

// Message is the JSON payload of one published record
type Message struct {
	Datetime    string  `json:"datetime"`
	EnergyUsage float64 `json:"energy_usage"`
}

// New connects to the broker described by cfg
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return NewWithClient(client, cfg.TopicPrefix), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = config.DefaultMQTTTopicPrefix
	}
	return &Publisher{
		client: client,
		topic:  Topic(topicPrefix),
	}
}

// Topic returns the topic records are published to under prefix
func Topic(prefix string) string {
	return prefix + "/consumption"
}

// Payload encodes rec the way it is published
func Payload(rec *consumptionpb.ConsumptionRecord) ([]byte, error) {
	body, err := json.Marshal(Message{
		Datetime:    rec.GetDatetime(),
		EnergyUsage: rec.GetEnergyUsage(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return body, nil
}

// Publish sends one record with QoS 1 and waits for the broker to take it
func (p *Publisher) Publish(rec *consumptionpb.ConsumptionRecord) error {
	body, err := Payload(rec)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing %s: timed out after %s", rec.GetDatetime(), publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", rec.GetDatetime(), err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
