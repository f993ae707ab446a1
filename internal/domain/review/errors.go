package review

import "servicematch/internal/pkg/apperr"

var (
	ErrReviewNotFound         = apperr.New(apperr.KindNotFound, "REVIEW_NOT_FOUND", "Review not found")
	ErrAlreadyReviewed        = apperr.New(apperr.KindConflict, "ALREADY_REVIEWED", "You have already reviewed this match")
	ErrAlreadyDeleted         = apperr.New(apperr.KindConflict, "REVIEW_ALREADY_DELETED", "This review has already been deleted")
	ErrCompletionNotConfirmed = apperr.New(apperr.KindPreconditionFailed, "COMPLETION_NOT_CONFIRMED", "Both sides must confirm completion before leaving a review")
	ErrEditWindowClosed       = apperr.New(apperr.KindPreconditionFailed, "EDIT_WINDOW_CLOSED", "Reviews can only be edited within 24 hours of posting")
	ErrCounterpartyReviewed   = apperr.New(apperr.KindPreconditionFailed, "COUNTERPARTY_REVIEWED", "This review is locked because the other participant has reviewed too")
	ErrNotAuthor              = apperr.New(apperr.KindForbidden, "NOT_REVIEW_AUTHOR", "Only the author can change this review")
	ErrInvalidRating          = apperr.New(apperr.KindValidation, "INVALID_RATING", "Ratings must be between 1 and 5")
	ErrCommentTooLong         = apperr.New(apperr.KindValidation, "COMMENT_TOO_LONG", "Comment must be at most 1000 characters")
	ErrEmptyPatch             = apperr.New(apperr.KindValidation, "EMPTY_PATCH", "Nothing to update")
)
