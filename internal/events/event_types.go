package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventTicketCreated          EventType = "ticket_created"
	EventTicketUpdated          EventType = "ticket_updated"
	EventTicketDeleted          EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// PasswordResetRequestedPayload signals out-of-band delivery of the reset
// token. The token itself rides on the payload so the notification channel
// can hand it to the user; it is never returned to the requesting client.
type PasswordResetRequestedPayload struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string                `json:"ticket_id"`
	Title    string                `json:"title"`
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority,omitempty"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketID string              `json:"ticket_id"`
	Status   domain.TicketStatus `json:"status"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketID string `json:"ticket_id"`
}
