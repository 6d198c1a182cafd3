package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message types on the orders topic.
const (
	TypeOrderUpsert = "order.upsert"
	TypeOrderDelete = "order.delete"
)

var ErrUnknownType = errors.New("unknown message type")

func knownType(t string) bool {
	return t == TypeOrderUpsert || t == TypeOrderDelete
}

// Envelope is the value written to Kafka. Payload stays raw until the
// consumer knows which type it carries.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Key       string          `json:"key"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewEnvelope(key, msgType string, payload any) (Envelope, error) {
	if !knownType(msgType) {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, msgType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}

	return Envelope{
		EventID:   uuid.NewString(),
		Key:       key,
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// ParseEnvelope decodes a Kafka value and rejects types this service does
// not publish.
func ParseEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if !knownType(env.Type) {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return env, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
	Close() error
}

// MessageHandler processes one message. A nil error acknowledges it.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Worker consumes messages and hands them to a MessageHandler until ctx is
// done or the handler fails.
type Worker interface {
	Start(ctx context.Context, handler MessageHandler) error
	Close() error
}
