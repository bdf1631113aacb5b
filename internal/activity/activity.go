// Package activity records what happened to claims and fans the record out
// to the journal store, the event stream and live subscribers.
package activity

import (
	"context"
	"time"
)

// Action is the kind of claim activity.
type Action string

const (
	ActionClaimSubmitted Action = "claim_submitted"
	ActionStatusChanged  Action = "status_changed"
	ActionCommentAdded   Action = "comment_added"
)

// Event is emitted by the claims service after a successful mutation.
type Event struct {
	ID        string            `json:"id"`
	ClaimID   string            `json:"claimId"`
	Action    Action            `json:"action"`
	Actor     string            `json:"actor"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// Store is the queryable activity journal.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClaim(ctx context.Context, claimID string, actions ...Action) ([]Event, error)
}

// Sink receives events after they are journaled.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
