package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened   EventType = "ticket_opened"
	EventTicketClaimed  EventType = "ticket_claimed"
	EventTicketReleased EventType = "ticket_released"
	EventTicketClosed   EventType = "ticket_closed"
)

// Event represents a lifecycle event emitted after a committed transition.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ThreadID  string      `json:"thread_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	CategoryKey   string `json:"category_key"`
	CreatorUserID string `json:"creator_user_id"`
	ThreadName    string `json:"thread_name"`
}

// TicketClaimPayload payload for claim and release.
type TicketClaimPayload struct {
	CategoryKey string `json:"category_key"`
	ClaimedBy   string `json:"claimed_by,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	CategoryKey   string    `json:"category_key"`
	CreatorUserID string    `json:"creator_user_id"`
	ClaimedBy     string    `json:"claimed_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Archived      bool      `json:"archived"`
}
