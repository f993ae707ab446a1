// Package app wires repositories, services and HTTP handlers together.
package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"servicematch/internal/config"
	"servicematch/internal/domain/completion"
	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/moderation"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/domain/reveal"
	"servicematch/internal/domain/review"
	"servicematch/internal/domain/user"
	"servicematch/internal/pkg/cryptotoken"
)

type Services struct {
	Matches       *match.Service
	Completion    *completion.Service
	Reveal        *reveal.Service
	Reviews       *review.Service
	Moderation    *moderation.Service
	Ratings       *rating.Aggregator
	Notifications *notification.Service

	Users             *user.Repository
	NotificationStore *notification.Repository
}

// NewServices builds the service graph. The cipher key comes from cfg only.
func NewServices(cfg *config.Config, db *gorm.DB) (*Services, error) {
	cipher, err := cryptotoken.New(cryptotoken.CipherConfig{Key: cfg.EncryptionKey})
	if err != nil {
		return nil, fmt.Errorf("init reveal cipher: %w", err)
	}

	users := user.NewRepository(db)
	matches := match.NewRepository(db)
	jobs := job.NewRepository(db)
	reviews := review.NewRepository(db)
	notifications := notification.NewRepository(db)
	aggregator := rating.NewAggregator(db)

	completionSvc := completion.NewService(db, matches, jobs)

	return &Services{
		Matches:           match.NewService(db, matches, users),
		Completion:        completionSvc,
		Reveal:            reveal.NewService(db, matches, reveal.NewRepository(db), users, cipher, cfg.PhoneRevealTTL),
		Reviews:           review.NewService(db, reviews, matches, completionSvc, aggregator, cfg.ReviewEditWindow),
		Moderation:        moderation.NewService(db, moderation.NewRepository(db), reviews, aggregator),
		Ratings:           aggregator,
		Notifications:     notification.NewService(notifications),
		Users:             users,
		NotificationStore: notifications,
	}, nil
}

// NewDispatcher delivers events to the inbox and the log, plus e-mail when SMTP
// is configured.
func NewDispatcher(cfg *config.Config, svcs *Services) *notification.Dispatcher {
	sinks := []notification.Sink{
		notification.NewStoreSink(svcs.NotificationStore),
		notification.LogSink{},
	}
	if cfg.SMTP.Enabled() {
		sinks = append(sinks, notification.NewEmailSink(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, svcs.Users,
		))
	}
	return notification.NewDispatcher(sinks...).WithTimeout(15 * time.Second)
}
