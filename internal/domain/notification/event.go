package notification

import "context"

// Kind identifies what happened. It is stored as the notification type.
type Kind string

const (
	KindMatchStatusChanged  Kind = "match_status_changed"
	KindCompletionRequested Kind = "completion_requested"
	KindCompletionConfirmed Kind = "completion_confirmed"
	KindPhoneRevealed       Kind = "phone_revealed"
	KindNewReview           Kind = "new_review"
	KindReviewRemoved       Kind = "review_removed"
)

// Event is an outbound notification produced by a service call. Services only
// return events; a Dispatcher delivers them once the owning transaction has committed.
type Event struct {
	UserID    int64
	Kind      Kind
	Title     string
	Message   string
	ActionRef string
}

// Publisher accepts events for asynchronous delivery. Publish never fails and
// never blocks on delivery.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}
