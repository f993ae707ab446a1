package reveal

import "servicematch/internal/pkg/apperr"

var (
	ErrMatchNotActive        = apperr.New(apperr.KindInvalidState, "MATCH_NOT_ACTIVE", "Phone numbers can only be requested on an active match")
	ErrPhoneNotFound         = apperr.New(apperr.KindNotFound, "PHONE_NOT_FOUND", "The other participant has no phone number on file")
	ErrInvalidOrExpiredToken = apperr.New(apperr.KindInvalidOrExpiredToken, "INVALID_OR_EXPIRED_TOKEN", "This reveal link is invalid, expired or already used")
	ErrTokenRequired         = apperr.New(apperr.KindValidation, "TOKEN_REQUIRED", "Token is required")
)
