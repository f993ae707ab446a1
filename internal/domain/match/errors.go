package match

import "servicematch/internal/pkg/apperr"

var (
	ErrMatchNotFound      = apperr.New(apperr.KindNotFound, "MATCH_NOT_FOUND", "Match not found")
	ErrNotParticipant     = apperr.New(apperr.KindForbidden, "NOT_A_PARTICIPANT", "You are not a participant of this match")
	ErrInvalidTransition  = apperr.New(apperr.KindInvalidTransition, "INVALID_STATUS_TRANSITION", "This status change is not allowed")
	ErrInvalidStatus      = apperr.New(apperr.KindValidation, "INVALID_STATUS", "Unknown match status")
	ErrInvalidRole        = apperr.New(apperr.KindValidation, "INVALID_ROLE", "Role must be client or professional")
	ErrSameParticipant    = apperr.New(apperr.KindValidation, "SAME_PARTICIPANT", "Client and professional must be different users")
	ErrInvalidReferences  = apperr.New(apperr.KindValidation, "INVALID_REFERENCES", "Proposal, client, professional and project are required")
	ErrMatchAlreadyExists = apperr.New(apperr.KindConflict, "MATCH_ALREADY_EXISTS", "A match already exists for this proposal")
)

// RequireParticipant returns ErrNotParticipant unless userID is on either side of m.
func RequireParticipant(m *Match, userID int64) error {
	if !m.HasParticipant(userID) {
		return ErrNotParticipant
	}
	return nil
}
