package review

import "time"

// State is the review lifecycle. Only active and edited reviews count towards ratings.
type State string

const (
	StateActive             State = "active"
	StateEdited             State = "edited"
	StateDeletedByAuthor    State = "deleted_by_author"
	StateDeletedByModerator State = "deleted_by_moderator"
)

func (s State) Live() bool {
	return s == StateActive || s == StateEdited
}

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// MatchReview is one participant's rating of the other. At most one live review
// exists per (match, reviewer); the partial unique index enforces it in the store.
type MatchReview struct {
	ID             int64 `json:"id" gorm:"primaryKey"`
	MatchID        int64 `json:"match_id" gorm:"not null;index;uniqueIndex:uq_match_reviews_live,where:deleted_at IS NULL"`
	ReviewerID     int64 `json:"reviewer_id" gorm:"not null;index;uniqueIndex:uq_match_reviews_live"`
	ReviewedUserID int64 `json:"reviewed_user_id" gorm:"not null;index"`

	OverallRating         int  `json:"overall_rating" gorm:"not null;check:chk_match_reviews_overall,overall_rating BETWEEN 1 AND 5"`
	QualityRating         *int `json:"quality_rating,omitempty"`
	ProfessionalismRating *int `json:"professionalism_rating,omitempty"`
	PunctualityRating     *int `json:"punctuality_rating,omitempty"`
	CommunicationRating   *int `json:"communication_rating,omitempty"`

	Comment    string `json:"comment,omitempty" gorm:"size:1000"`
	IsVerified bool   `json:"is_verified" gorm:"not null;default:false"`
	State      State  `json:"state" gorm:"size:32;not null;default:active"`

	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    *int64     `json:"deleted_by,omitempty"`
	DeleteReason *string    `json:"delete_reason,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MatchReview) TableName() string { return "match_reviews" }

// Ratings is the closed set of scores a reviewer can give. Overall is required.
type Ratings struct {
	Overall         int
	Quality         *int
	Professionalism *int
	Punctuality     *int
	Communication   *int
}

func (r Ratings) Validate() error {
	if !inRange(r.Overall) {
		return ErrInvalidRating
	}
	for _, sub := range []*int{r.Quality, r.Professionalism, r.Punctuality, r.Communication} {
		if sub != nil && !inRange(*sub) {
			return ErrInvalidRating
		}
	}
	return nil
}

func inRange(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// Patch carries the fields an author wants to change. Nil means unchanged.
type Patch struct {
	Overall         *int
	Quality         *int
	Professionalism *int
	Punctuality     *int
	Communication   *int
	Comment         *string
}

func (p Patch) Empty() bool {
	return p.Overall == nil && p.Quality == nil && p.Professionalism == nil &&
		p.Punctuality == nil && p.Communication == nil && p.Comment == nil
}

func (r *MatchReview) ratings() Ratings {
	return Ratings{
		Overall:         r.OverallRating,
		Quality:         r.QualityRating,
		Professionalism: r.ProfessionalismRating,
		Punctuality:     r.PunctualityRating,
		Communication:   r.CommunicationRating,
	}
}

func (r *MatchReview) apply(p Patch) {
	if p.Overall != nil {
		r.OverallRating = *p.Overall
	}
	if p.Quality != nil {
		r.QualityRating = p.Quality
	}
	if p.Professionalism != nil {
		r.ProfessionalismRating = p.Professionalism
	}
	if p.Punctuality != nil {
		r.PunctualityRating = p.Punctuality
	}
	if p.Communication != nil {
		r.CommunicationRating = p.Communication
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
}

type authorAction int

const (
	actionEdit authorAction = iota
	actionDelete
)

// checkAuthorAction decides whether the author may still edit or delete.
// Once the counterparty has reviewed, both sides are frozen.
func (r *MatchReview) checkAuthorAction(action authorAction, actingUserID int64, counterpartyReviewed bool, now time.Time, editWindow time.Duration) error {
	if r.ReviewerID != actingUserID {
		return ErrNotAuthor
	}
	switch r.State {
	case StateDeletedByAuthor, StateDeletedByModerator:
		return ErrAlreadyDeleted
	case StateActive, StateEdited:
		if counterpartyReviewed {
			return ErrCounterpartyReviewed
		}
		if action == actionEdit && now.Sub(r.CreatedAt) > editWindow {
			return ErrEditWindowClosed
		}
		return nil
	default:
		return ErrAlreadyDeleted
	}
}
