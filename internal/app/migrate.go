package app

import (
	"gorm.io/gorm"

	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/moderation"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/domain/reveal"
	"servicematch/internal/domain/review"
	"servicematch/internal/domain/user"
)

// Models lists every table owned or read by the service, in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&job.Job{},
		&match.Match{},
		&reveal.PhoneReveal{},
		&reveal.AuditLog{},
		&review.MatchReview{},
		&rating.Summary{},
		&moderation.Decision{},
		&notification.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
