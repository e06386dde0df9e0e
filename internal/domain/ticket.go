package domain

import "time"

// TicketRecord is the unit of state tracked for an open ticket. A record
// exists iff its thread is open; closing a ticket deletes the record rather
// than retaining a closed state.
type TicketRecord struct {
	ThreadID      string    `json:"thread_id"`
	CreatorUserID string    `json:"creator_user_id"`
	CategoryKey   string    `json:"category_key"`
	ClaimedBy     string    `json:"claimed_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Claimed reports whether a support agent currently holds the ticket.
func (r TicketRecord) Claimed() bool {
	return r.ClaimedBy != ""
}

// Category describes one ticket category. Immutable after startup.
type Category struct {
	Key         string
	Name        string
	Description string
	Emoji       string
	RoleID      string
	Color       int
}

// Label returns the category's display identity used in thread names.
func (c Category) Label() string {
	return c.Emoji + " " + c.Name
}
