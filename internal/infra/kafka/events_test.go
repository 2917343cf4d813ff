package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-users/internal/core/domain"
	"github.com/arklim/social-platform-users/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer *fakeAsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			Topic: "user-events",
		},
		done: make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "user-service",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishUserCreated(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	occurredAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := domain.UserCreatedEvent{
		EventEnvelope: domain.EventEnvelope{
			EventID:    "event-123",
			UserID:     "user-789",
			Email:      "jane@example.com",
			OccurredAt: occurredAt,
		},
		Name: "Jane Doe",
	}

	if err := publisher.PublishUserCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishUserCreated returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "user-events" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			t.Fatalf("Key.Encode returned error: %v", err)
		}
		if string(key) != event.UserID {
			t.Fatalf("unexpected partition key: %s", key)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != domain.EventTypeUserCreated {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["user_id"]; got != event.UserID {
			t.Fatalf("unexpected user_id: %v", got)
		}
		if got := envelope["email"]; got != event.Email {
			t.Fatalf("unexpected email: %v", got)
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}
		if timestamp != occurredAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["name"]; got != event.Name {
			t.Fatalf("unexpected payload.name: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}
		if metadata["service"] != "user-service" {
			t.Fatalf("unexpected metadata service: %v", metadata["service"])
		}
		if metadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", metadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishUserDeletedOmitsPayload(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.UserDeletedEvent{
		EventEnvelope: domain.EventEnvelope{
			EventID:    "event-456",
			UserID:     "user-789",
			Email:      "jane@example.com",
			OccurredAt: time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC),
		},
	}

	if err := publisher.PublishUserDeleted(context.Background(), event); err != nil {
		t.Fatalf("PublishUserDeleted returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != domain.EventTypeUserDeleted {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if _, present := envelope["payload"]; present {
			t.Fatalf("expected no payload, got %v", envelope["payload"])
		}
		// The pre-deletion email must survive in the envelope.
		if got := envelope["email"]; got != event.Email {
			t.Fatalf("unexpected email: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishUserProfileCarriesAction(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.UserProfileEvent{
		EventEnvelope: domain.EventEnvelope{
			EventID:    "event-789",
			UserID:     "user-789",
			Email:      "jane@example.com",
			OccurredAt: time.Date(2026, 3, 14, 9, 32, 0, 0, time.UTC),
		},
		Name:   "Jane Doe",
		Action: domain.ProfileActionUpdated,
	}

	if err := publisher.PublishUserProfile(context.Background(), event); err != nil {
		t.Fatalf("PublishUserProfile returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["action"]; got != domain.ProfileActionUpdated {
			t.Fatalf("unexpected action: %v", got)
		}
		if got := payload["name"]; got != event.Name {
			t.Fatalf("unexpected name: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	// Unbuffered input channel so the publish blocks and the context wins.
	asyncProducer := newFakeAsyncProducer()
	asyncProducer.input = make(chan *sarama.ProducerMessage)

	publisher := newTestPublisher(t, asyncProducer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := domain.UserSuspendedEvent{
		EventEnvelope: domain.EventEnvelope{
			EventID: "event-000",
			UserID:  "user-789",
			Email:   "jane@example.com",
		},
	}

	if err := publisher.PublishUserSuspended(ctx, event); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
