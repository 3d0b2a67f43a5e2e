package updates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qeme/sentinel-lite/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes update events to Kafka.
type Producer struct {
	Writer MessageWriter
	now    func() time.Time
	newID  func() string
}

// NewProducer wraps writer.
func NewProducer(writer MessageWriter) *Producer {
	return &Producer{
		Writer: writer,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// NewUpdateDetectedEvent builds the event contract for u.
func (p *Producer) NewUpdateDetectedEvent(u model.RegulatoryUpdate) UpdateDetectedEvent {
	return UpdateDetectedEvent{
		EventType:     EventTypeUpdateDetected,
		EventID:       p.newID(),
		EventTime:     p.now().UTC(),
		SchemaVersion: SchemaVersion,
		Update:        u,
	}
}

// Publish writes one message per update, keyed by source name so updates of
// the same source stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, updates []model.RegulatoryUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(updates))
	for _, u := range updates {
		payload, err := json.Marshal(p.NewUpdateDetectedEvent(u))
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(u.Source),
			Value: payload,
		})
	}

	if err := p.Writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d update events: %w", len(msgs), err)
	}
	return nil
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}

// DecodeUpdateDetected parses and validates an event payload.
func DecodeUpdateDetected(msg []byte) (UpdateDetectedEvent, error) {
	var event UpdateDetectedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal UpdateDetectedEvent: %w", err)
	}
	if event.EventType != EventTypeUpdateDetected {
		return event, fmt.Errorf("unexpected event type %q", event.EventType)
	}
	if event.EventID == "" || event.Update.Source == "" || !event.Update.ImpactLevel.Valid() {
		return event, errors.New("invalid event: missing required fields")
	}
	return event, nil
}
