package domain

import "time"

// Event type discriminators. These are wire-level identifiers consumed by
// downstream services; existing values must never change meaning.
const (
	EventTypeUserCreated   = "USER_CREATED"
	EventTypeUserUpdated   = "USER_UPDATED"
	EventTypeUserSuspended = "USER_SUSPENDED"
	EventTypeUserDeleted   = "USER_DELETED"
	EventTypeUserProfile   = "USER_PROFILE"
)

// Profile event actions carried by USER_PROFILE payloads.
const (
	ProfileActionCreated = "CREATED"
	ProfileActionUpdated = "UPDATED"
	ProfileActionDeleted = "DELETED"
)

// UserEvent is the closed set of domain events emitted by this service.
// Each variant carries the common envelope identity (event id, subject user id
// and email, occurrence time) and is immutable after construction.
type UserEvent interface {
	// EventType returns the stable wire discriminator for the variant.
	EventType() string
	// Envelope returns the fields shared by every variant.
	Envelope() EventEnvelope
}

// EventEnvelope holds the fields common to all event variants.
type EventEnvelope struct {
	EventID    string
	UserID     string
	Email      string
	OccurredAt time.Time
}

// UserCreatedEvent signals a new account was provisioned.
type UserCreatedEvent struct {
	EventEnvelope
	Name string
}

func (UserCreatedEvent) EventType() string { return EventTypeUserCreated }

// Envelope returns the shared envelope fields.
func (e UserCreatedEvent) Envelope() EventEnvelope { return e.EventEnvelope }

// UserUpdatedEvent signals profile fields changed.
type UserUpdatedEvent struct {
	EventEnvelope
	Name string
}

func (UserUpdatedEvent) EventType() string { return EventTypeUserUpdated }

// Envelope returns the shared envelope fields.
func (e UserUpdatedEvent) Envelope() EventEnvelope { return e.EventEnvelope }

// UserSuspendedEvent signals the account was deactivated.
type UserSuspendedEvent struct {
	EventEnvelope
}

func (UserSuspendedEvent) EventType() string { return EventTypeUserSuspended }

// Envelope returns the shared envelope fields.
func (e UserSuspendedEvent) Envelope() EventEnvelope { return e.EventEnvelope }

// UserDeletedEvent signals the account row was removed. It is published before
// the row delete so the pre-deletion email is still readable; consumers may
// observe the event while a concurrent lookup already returns absent.
type UserDeletedEvent struct {
	EventEnvelope
}

func (UserDeletedEvent) EventType() string { return EventTypeUserDeleted }

// Envelope returns the shared envelope fields.
func (e UserDeletedEvent) Envelope() EventEnvelope { return e.EventEnvelope }

// UserProfileEvent carries the compact profile view consumed by the product
// service for ownership tracking. Action is one of the ProfileAction constants.
type UserProfileEvent struct {
	EventEnvelope
	Name   string
	Action string
}

func (UserProfileEvent) EventType() string { return EventTypeUserProfile }

// Envelope returns the shared envelope fields.
func (e UserProfileEvent) Envelope() EventEnvelope { return e.EventEnvelope }
