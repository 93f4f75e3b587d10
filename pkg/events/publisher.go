package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const NoteEventsTopic = "notes.events"

// Note lifecycle event types.
const (
	NoteCreated = "NOTE_CREATED"
	NoteUpdated = "NOTE_UPDATED"
	NoteDeleted = "NOTE_DELETED"
)

type envelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt string                 `json:"occurred_at"`
}

// Publisher serializes events onto a watermill topic. The bus is
// in-process (gochannel); publication is auxiliary and callers treat
// failures as warnings, never as operation failure.
type Publisher struct {
	pub   message.Publisher
	topic string
}

func NewPublisher(pub message.Publisher, topic string) *Publisher {
	if topic == "" {
		topic = NoteEventsTopic
	}
	return &Publisher{
		pub:   pub,
		topic: topic,
	}
}

func (p *Publisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(envelope{
		Type:       evt.EventType(),
		Payload:    evt.Payload(),
		OccurredAt: evt.Timestamp().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return p.pub.Publish(p.topic, msg)
}
