package domain

import "strings"

// Action is a button press decoded once at the boundary. Exactly one of the
// concrete types below implements it.
type Action interface {
	isAction()
}

// CreateTicket opens a ticket in the given category.
type CreateTicket struct {
	CategoryKey string
}

// ToggleClaim flips the claim state of the ticket in the given thread.
type ToggleClaim struct {
	ThreadID string
}

// CloseTicket closes and archives the ticket in the given thread.
type CloseTicket struct {
	ThreadID string
}

func (CreateTicket) isAction() {}
func (ToggleClaim) isAction()  {}
func (CloseTicket) isAction()  {}

const (
	createPrefix = "ticket_"
	claimPrefix  = "claim_"
	closePrefix  = "close_"
)

// ParseAction decodes a component custom id into an Action. The boolean is
// false for ids this bot did not produce.
func ParseAction(customID string) (Action, bool) {
	switch {
	case strings.HasPrefix(customID, createPrefix):
		return CreateTicket{CategoryKey: strings.TrimPrefix(customID, createPrefix)}, true
	case strings.HasPrefix(customID, claimPrefix):
		return ToggleClaim{ThreadID: strings.TrimPrefix(customID, claimPrefix)}, true
	case strings.HasPrefix(customID, closePrefix):
		return CloseTicket{ThreadID: strings.TrimPrefix(customID, closePrefix)}, true
	default:
		return nil, false
	}
}

// CreateCustomID renders the panel button id for a category.
func CreateCustomID(categoryKey string) string {
	return createPrefix + categoryKey
}

// ClaimCustomID renders the claim/unclaim toggle id for a thread.
func ClaimCustomID(threadID string) string {
	return claimPrefix + threadID
}

// CloseCustomID renders the close button id for a thread.
func CloseCustomID(threadID string) string {
	return closePrefix + threadID
}
