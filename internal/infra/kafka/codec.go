package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arklim/social-platform-users/internal/core/domain"
)

const schemaVersion = "1.0"

type envelopeMetadata map[string]string

// wireEnvelope is the on-wire representation shared by all user events. The
// event_type discriminator selects the payload shape; unknown discriminators
// are rejected on decode.
type wireEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id"`
	Email     string           `json:"email,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

type namePayload struct {
	Name string `json:"name"`
}

type profilePayload struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// EncodeEvent serializes a user event into the wire envelope.
func EncodeEvent(event domain.UserEvent, metadata map[string]string) ([]byte, error) {
	env := event.Envelope()

	var payload any
	switch e := event.(type) {
	case domain.UserCreatedEvent:
		payload = namePayload{Name: e.Name}
	case domain.UserUpdatedEvent:
		payload = namePayload{Name: e.Name}
	case domain.UserSuspendedEvent:
		payload = nil
	case domain.UserDeletedEvent:
		payload = nil
	case domain.UserProfileEvent:
		payload = profilePayload{Name: e.Name, Action: e.Action}
	default:
		return nil, fmt.Errorf("encode event: unsupported type %T", event)
	}

	var raw json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal event payload: %w", err)
		}
		raw = bytes
	}

	ts := env.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	wire := wireEnvelope{
		EventID:   env.EventID,
		EventType: event.EventType(),
		UserID:    env.UserID,
		Email:     env.Email,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   raw,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}

	return bytes, nil
}

// DecodeEvent deserializes a wire envelope back into a typed user event.
// Messages carrying an unknown event_type are rejected.
func DecodeEvent(data []byte) (domain.UserEvent, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	env := domain.EventEnvelope{
		EventID:    wire.EventID,
		UserID:     wire.UserID,
		Email:      wire.Email,
		OccurredAt: wire.Timestamp,
	}

	switch wire.EventType {
	case domain.EventTypeUserCreated:
		var p namePayload
		if err := unmarshalPayload(wire.Payload, &p); err != nil {
			return nil, err
		}
		return domain.UserCreatedEvent{EventEnvelope: env, Name: p.Name}, nil
	case domain.EventTypeUserUpdated:
		var p namePayload
		if err := unmarshalPayload(wire.Payload, &p); err != nil {
			return nil, err
		}
		return domain.UserUpdatedEvent{EventEnvelope: env, Name: p.Name}, nil
	case domain.EventTypeUserSuspended:
		return domain.UserSuspendedEvent{EventEnvelope: env}, nil
	case domain.EventTypeUserDeleted:
		return domain.UserDeletedEvent{EventEnvelope: env}, nil
	case domain.EventTypeUserProfile:
		var p profilePayload
		if err := unmarshalPayload(wire.Payload, &p); err != nil {
			return nil, err
		}
		return domain.UserProfileEvent{EventEnvelope: env, Name: p.Name, Action: p.Action}, nil
	default:
		return nil, fmt.Errorf("decode event: unknown event type %q", wire.EventType)
	}
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal event payload: %w", err)
	}
	return nil
}
