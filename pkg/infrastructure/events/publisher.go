package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers domain events to interested parties
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// StorePublisher appends events to an EventStore, one stream per SKU
type StorePublisher struct {
	store EventStore
}

func NewStorePublisher(store EventStore) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Publish(ctx context.Context, event Event) error {
	return p.store.AppendEvent(event.StreamID(), event)
}

// MultiPublisher publishes to every publisher and joins their errors
type MultiPublisher struct {
	pubs []Publisher
}

func NewMultiPublisher(pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{pubs: pubs}
}

func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// KafkaPublisher publishes events as JSON keyed by SKU so a SKU's events stay ordered in one partition
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// kafkaMessageWriter abstracts kafka.Writer for testability
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	var addrs []string
	for _, b := range brokers {
		for _, a := range strings.Split(b, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

// NewKafkaPublisherWith is only for tests to inject a fake writer
func NewKafkaPublisherWith(w kafkaMessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(envelope(event))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.StreamID()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
		},
		Time: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("publish %s for %s: %w", event.Type(), event.StreamID(), err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

func envelope(e Event) BaseEvent {
	return BaseEvent{
		EventID:      e.ID(),
		EventType:    e.Type(),
		Stream:       e.StreamID(),
		EventData:    e.Data(),
		EventTime:    e.Timestamp(),
		EventVersion: e.Version(),
	}
}
