package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus canonicalizes status input. The legacy "pending"
// vocabulary maps to IN_PROGRESS.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch raw {
	case string(TicketStatusOpen), "open":
		return TicketStatusOpen, true
	case string(TicketStatusInProgress), "in_progress", "pending":
		return TicketStatusInProgress, true
	case string(TicketStatusClosed), "closed":
		return TicketStatusClosed, true
	default:
		return "", false
	}
}

// TicketPriority enumerates urgency. The empty value means unset.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ParseTicketPriority canonicalizes priority input; empty input stays empty.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch raw {
	case "":
		return "", true
	case string(TicketPriorityLow), "low":
		return TicketPriorityLow, true
	case string(TicketPriorityMedium), "medium":
		return TicketPriorityMedium, true
	case string(TicketPriorityHigh), "high":
		return TicketPriorityHigh, true
	default:
		return "", false
	}
}

// Limits applied at creation and update time.
const (
	TicketTitleMaxLen       = 100
	TicketDescriptionMaxLen = 1000
)

// Ticket is the aggregate for support requests. CreatedBy is nil for
// ownerless tickets.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority,omitempty"`
	CreatedBy   *string        `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
