package moderation

import "servicematch/internal/pkg/apperr"

var (
	ErrReasonRequired = apperr.New(apperr.KindValidation, "REASON_REQUIRED", "A reason is required to reject a review")
	ErrReasonTooLong  = apperr.New(apperr.KindValidation, "REASON_TOO_LONG", "Reason must be at most 500 characters")
)
