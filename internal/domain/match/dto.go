package match

type CreateMatchRequest struct {
	ProposalID     int64  `json:"proposal_id" validate:"required,gt=0"`
	ClientID       int64  `json:"client_id" validate:"required,gt=0"`
	ProfessionalID int64  `json:"professional_id" validate:"required,gt=0,nefield=ClientID"`
	ProjectID      int64  `json:"project_id" validate:"required,gt=0"`
	JobID          *int64 `json:"job_id,omitempty" validate:"omitempty,gt=0"`
}

func (r *CreateMatchRequest) Input() CreateInput {
	return CreateInput{
		ProposalID:     r.ProposalID,
		ClientID:       r.ClientID,
		ProfessionalID: r.ProfessionalID,
		ProjectID:      r.ProjectID,
		JobID:          r.JobID,
	}
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=active completed disputed cancelled unsuccessful"`
}

type ListResponse struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
}
