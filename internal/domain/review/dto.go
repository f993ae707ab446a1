package review

type CreateReviewRequest struct {
	OverallRating         int    `json:"overall_rating" validate:"required,min=1,max=5"`
	QualityRating         *int   `json:"quality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	ProfessionalismRating *int   `json:"professionalism_rating,omitempty" validate:"omitempty,min=1,max=5"`
	PunctualityRating     *int   `json:"punctuality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	CommunicationRating   *int   `json:"communication_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment               string `json:"comment,omitempty" validate:"max=1000"`
}

func (r *CreateReviewRequest) Ratings() Ratings {
	return Ratings{
		Overall:         r.OverallRating,
		Quality:         r.QualityRating,
		Professionalism: r.ProfessionalismRating,
		Punctuality:     r.PunctualityRating,
		Communication:   r.CommunicationRating,
	}
}

type UpdateReviewRequest struct {
	OverallRating         *int    `json:"overall_rating,omitempty" validate:"omitempty,min=1,max=5"`
	QualityRating         *int    `json:"quality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	ProfessionalismRating *int    `json:"professionalism_rating,omitempty" validate:"omitempty,min=1,max=5"`
	PunctualityRating     *int    `json:"punctuality_rating,omitempty" validate:"omitempty,min=1,max=5"`
	CommunicationRating   *int    `json:"communication_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment               *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateReviewRequest) Patch() Patch {
	return Patch{
		Overall:         r.OverallRating,
		Quality:         r.QualityRating,
		Professionalism: r.ProfessionalismRating,
		Punctuality:     r.PunctualityRating,
		Communication:   r.CommunicationRating,
		Comment:         r.Comment,
	}
}

type DeleteReviewRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type EligibilityResponse struct {
	MatchID   int64 `json:"match_id"`
	CanReview bool  `json:"can_review"`
}
