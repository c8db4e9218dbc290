package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttQoS            = 1
	mqttConnectTimeout = 5 * time.Second
	mqttSubTimeout     = 5 * time.Second
)

// MQTTOptions configures the broker connection shared by reader sources.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// Dial connects to the broker. An empty broker address means no hardware
// readers are deployed and yields ErrUnavailable.
func Dial(opts MQTTOptions) (mqtt.Client, error) {
	if strings.TrimSpace(opts.Broker) == "" {
		return nil, ErrUnavailable
	}
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect %s: %w", opts.Broker, ErrUnavailable)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Broker, err)
	}
	return client, nil
}

// ReaderTopic is the topic a hardware reader publishes tag texts on.
func ReaderTopic(prefix, readerID string) string {
	return strings.TrimRight(prefix, "/") + "/" + readerID
}

// MQTTSource listens to one hardware reader. Each message body is the raw tag text.
type MQTTSource struct {
	client mqtt.Client
	topic  string

	mu      sync.Mutex
	running bool
	slot    *Slot
}

var _ Source = (*MQTTSource)(nil)

func NewMQTTSource(client mqtt.Client, topicPrefix, readerID string) *MQTTSource {
	return &MQTTSource{
		client: client,
		topic:  ReaderTopic(topicPrefix, readerID),
		slot:   NewSlot(),
	}
}

func (s *MQTTSource) Topic() string { return s.topic }

func (s *MQTTSource) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client == nil || !s.client.IsConnectionOpen() {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	token := s.client.Subscribe(s.topic, mqttQoS, s.handle)
	if !token.WaitTimeout(mqttSubTimeout) {
		return fmt.Errorf("subscribe %s: timed out", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	s.running = true
	return nil
}

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	payload := strings.TrimSpace(string(msg.Payload()))
	if payload == "" {
		s.slot.Offer(FailedEvent(OriginReader, ErrGarbled))
		return
	}
	s.slot.Offer(NewEvent(OriginReader, payload))
}

func (s *MQTTSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.slot.Clear()

	token := s.client.Unsubscribe(s.topic)
	if !token.WaitTimeout(mqttSubTimeout) {
		return fmt.Errorf("unsubscribe %s: timed out", s.topic)
	}
	return token.Error()
}

func (s *MQTTSource) Events() <-chan Event {
	return s.slot.C()
}
