package completion

import "servicematch/internal/pkg/apperr"

var (
	ErrJobNotFound      = apperr.New(apperr.KindNotFound, "JOB_NOT_FOUND", "No job is linked to this match")
	ErrMatchNotActive   = apperr.New(apperr.KindInvalidState, "MATCH_NOT_ACTIVE", "Completion can only be handled on an active match")
	ErrAlreadyRequested = apperr.New(apperr.KindConflict, "COMPLETION_ALREADY_REQUESTED", "You have already requested completion")
	ErrAlreadyConfirmed = apperr.New(apperr.KindConflict, "COMPLETION_ALREADY_CONFIRMED", "Completion has already been confirmed")
	ErrNotRequested     = apperr.New(apperr.KindPreconditionFailed, "COMPLETION_NOT_REQUESTED", "Completion has not been requested yet")
	ErrSelfConfirmation = apperr.New(apperr.KindForbidden, "SELF_CONFIRMATION", "You cannot confirm your own completion request")
)
