package models

import (
	"time"

	"github.com/google/uuid"
)

type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

type UserEvent struct {
	EventID    string        `json:"event_id"`
	Type       UserEventType `json:"type"`
	UserID     int64         `json:"user_id"`
	User       *User         `json:"user,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewUserEvent stamps a fresh event id and time. user may be nil for deletions.
func NewUserEvent(eventType UserEventType, userID int64, user *User) UserEvent {
	return UserEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		User:       user,
		OccurredAt: time.Now().UTC(),
	}
}
