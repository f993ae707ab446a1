package reveal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/user"
	"servicematch/internal/logger"
	"servicematch/internal/pkg/apperr"
	"servicematch/internal/pkg/cryptotoken"
)

const DefaultTTL = 24 * time.Hour

// Directory resolves contact data for a user.
type Directory interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// RequestMeta is recorded for audit. Both fields are optional.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RevealResult struct {
	PhoneNumber  string `json:"phone_number"`
	MaskedNumber string `json:"masked_number"`
}

type MaskedResult struct {
	MaskedNumber string `json:"masked_number"`
	HasPhone     bool   `json:"has_phone"`
	Revealed     bool   `json:"revealed"`
}

type HistoryEntry struct {
	UserID     int64      `json:"user_id"`
	RevealedBy *int64     `json:"revealed_by,omitempty"`
	RevealedAt *time.Time `json:"revealed_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	IP         *string    `json:"ip"`
}

type Service struct {
	db      *gorm.DB
	matches *match.Repository
	repo    *Repository
	users   Directory
	cipher  *cryptotoken.Service
	ttl     time.Duration
	now     func() time.Time
}

// NewService wires the reveal flow. cipher must be built from an explicit key.
func NewService(db *gorm.DB, matches *match.Repository, repo *Repository, users Directory, cipher *cryptotoken.Service, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		db:      db,
		matches: matches,
		repo:    repo,
		users:   users,
		cipher:  cipher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// GenerateToken issues a one-time token for the counterparty's phone number.
// The plaintext token is returned here and never again.
func (s *Service) GenerateToken(ctx context.Context, matchID, userID int64, meta RequestMeta) (*TokenResult, error) {
	m, err := s.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != match.StatusActive {
		return nil, ErrMatchNotActive
	}

	targetID := m.Counterparty(userID)
	phone, err := s.contactPhone(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if phone == "" {
		return nil, ErrPhoneNotFound
	}

	token, hash, err := cryptotoken.GenerateSecret()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	encrypted, err := s.cipher.Encrypt(phone)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	now := s.now().UTC()
	rv := &PhoneReveal{
		MatchID:        m.ID,
		UserID:         userID,
		TargetUserID:   targetID,
		EncryptedPhone: encrypted,
		TokenHash:      hash,
		ExpiresAt:      now.Add(s.ttl),
		IPAddress:      optional(meta.IP),
		UserAgent:      optional(meta.UserAgent),
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, apperr.Persistence(err)
	}

	s.audit(ctx, rv, userID, AuditIssued, meta, datatypes.JSONMap{"expires_at": rv.ExpiresAt.Format(time.RFC3339)})
	return &TokenResult{Token: token, ExpiresAt: rv.ExpiresAt}, nil
}

// RedeemToken consumes a pending token and discloses the number. A token can be
// redeemed once; every later attempt fails with ErrInvalidOrExpiredToken.
func (s *Service) RedeemToken(ctx context.Context, matchID int64, token string, userID int64, meta RequestMeta) (*RevealResult, []notification.Event, error) {
	if token == "" {
		return nil, nil, ErrTokenRequired
	}
	if _, err := s.loadForParticipant(ctx, matchID, userID); err != nil {
		return nil, nil, err
	}

	hash := cryptotoken.HashToken(token)
	var (
		rv    *PhoneReveal
		phone string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		var err error
		rv, err = repo.FindPending(ctx, matchID, hash, now)
		if err != nil {
			return apperr.Persistence(err)
		}
		if rv == nil {
			return ErrInvalidOrExpiredToken
		}

		phone, err = s.cipher.Decrypt(rv.EncryptedPhone)
		if err != nil {
			return err
		}

		ok, err := repo.MarkRedeemed(ctx, rv.ID, userID, now)
		if err != nil {
			return apperr.Persistence(err)
		}
		if !ok {
			return ErrInvalidOrExpiredToken
		}
		rv.RedeemedAt = &now
		rv.RedeemedBy = &userID

		if err := s.matches.WithTx(tx).RecordPhoneReveal(ctx, matchID, now); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	s.audit(ctx, rv, userID, AuditRedeemed, meta, datatypes.JSONMap{"issued_by": rv.UserID})

	var events []notification.Event
	if rv.TargetUserID != userID {
		events = append(events, notification.Event{
			UserID:    rv.TargetUserID,
			Kind:      notification.KindPhoneRevealed,
			Title:     "Your phone number was shared",
			Message:   fmt.Sprintf("Your phone number was revealed to the other participant of match #%d.", matchID),
			ActionRef: match.ActionRef(matchID),
		})
	}
	return &RevealResult{PhoneNumber: phone, MaskedNumber: MaskPhone(phone)}, events, nil
}

// GetMaskedPhone needs no token. Revealed tells whether any grant for the match was ever redeemed.
func (s *Service) GetMaskedPhone(ctx context.Context, matchID, userID int64) (*MaskedResult, error) {
	m, err := s.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	phone, err := s.contactPhone(ctx, m.Counterparty(userID))
	if err != nil {
		return nil, err
	}
	revealed, err := s.repo.HasRedeemed(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &MaskedResult{MaskedNumber: MaskPhone(phone), HasPhone: phone != "", Revealed: revealed}, nil
}

// GetRevealHistory is an audit read. Callers must restrict it to privileged users.
func (s *Service) GetRevealHistory(ctx context.Context, matchID int64) ([]HistoryEntry, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, match.ErrMatchNotFound
	}
	rows, err := s.repo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{
			UserID:     r.UserID,
			RevealedBy: r.RedeemedBy,
			RevealedAt: r.RedeemedAt,
			ExpiresAt:  r.ExpiresAt,
			CreatedAt:  r.CreatedAt,
			IP:         r.IPAddress,
		})
	}
	return out, nil
}

func (s *Service) loadForParticipant(ctx context.Context, matchID, userID int64) (*match.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, match.ErrMatchNotFound
	}
	if err := match.RequireParticipant(m, userID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) contactPhone(ctx context.Context, userID int64) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", apperr.Persistence(err)
	}
	if u == nil {
		return "", nil
	}
	return u.ContactPhone(), nil
}

// audit never fails the caller. The disclosure already happened.
func (s *Service) audit(ctx context.Context, rv *PhoneReveal, userID int64, action AuditAction, meta RequestMeta, details datatypes.JSONMap) {
	entry := &AuditLog{
		MatchID:   rv.MatchID,
		RevealID:  rv.ID,
		UserID:    userID,
		Action:    action,
		IPAddress: optional(meta.IP),
		UserAgent: optional(meta.UserAgent),
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateAudit(ctx, entry); err != nil {
		logger.CtxWithError(ctx, "phone reveal audit write failed", err,
			"match_id", rv.MatchID, "reveal_id", rv.ID, "action", action)
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
