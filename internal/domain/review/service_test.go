package review

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"servicematch/internal/database"
	"servicematch/internal/domain/completion"
	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/pkg/apperr"
)

const (
	clientID   int64 = 101
	proID      int64 = 202
	outsiderID int64 = 303
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	completion *completion.Service
	agg        *rating.Aggregator
	clock      time.Time
	proposals  int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:review_%s?mode=memory&cache=shared", t.Name()), database.Options{Silent: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&match.Match{}, &job.Job{}, &MatchReview{}, &rating.Summary{}))

	matches := match.NewRepository(db)
	f := &fixture{
		db:         db,
		completion: completion.NewService(db, matches, job.NewRepository(db)),
		agg:        rating.NewAggregator(db),
		clock:      time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(db, NewRepository(db), matches, f.completion, f.agg, 0)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

// newMatch creates an active match between the given users with a linked job.
func (f *fixture) newMatch(t *testing.T, client, pro int64) *match.Match {
	t.Helper()
	ctx := context.Background()
	f.proposals++
	require.NoError(t, job.NewRepository(f.db).Create(ctx, &job.Job{
		ProjectID: f.proposals, ClientID: client, ProfessionalID: pro, Status: job.StatusInProgress,
	}))
	m := &match.Match{ProposalID: f.proposals, ClientID: client, ProfessionalID: pro, ProjectID: f.proposals, Status: match.StatusActive}
	require.NoError(t, match.NewRepository(f.db).Create(ctx, m))
	return m
}

// completedMatch runs the full handshake: client requests, professional confirms.
func (f *fixture) completedMatch(t *testing.T, client, pro int64) *match.Match {
	t.Helper()
	ctx := context.Background()
	m := f.newMatch(t, client, pro)
	_, _, err := f.completion.RequestCompletion(ctx, m.ID, client, "")
	require.NoError(t, err)
	_, _, err = f.completion.ConfirmCompletion(ctx, m.ID, pro)
	require.NoError(t, err)
	return m
}

func intp(v int) *int { return &v }

func TestEligibilityAfterHandshake(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.newMatch(t, clientID, proID)

	can, err := f.svc.CanLeaveReview(ctx, m.ID, clientID)
	require.NoError(t, err)
	assert.False(t, can)

	_, _, err = f.completion.RequestCompletion(ctx, m.ID, clientID, "")
	require.NoError(t, err)
	_, _, err = f.completion.ConfirmCompletion(ctx, m.ID, proID)
	require.NoError(t, err)

	stored, err := match.NewRepository(f.db).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, stored.Status)

	for _, uid := range []int64{clientID, proID} {
		can, err := f.svc.CanLeaveReview(ctx, m.ID, uid)
		require.NoError(t, err)
		assert.True(t, can, "user %d", uid)
	}
	can, err = f.svc.CanLeaveReview(ctx, m.ID, outsiderID)
	require.NoError(t, err)
	assert.False(t, can)
}

func TestDuplicateReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.completedMatch(t, clientID, proID)

	rv, events, err := f.svc.CreateReview(ctx, m.ID, clientID, Ratings{Overall: 5}, "great")
	require.NoError(t, err)
	assert.Equal(t, proID, rv.ReviewedUserID)
	assert.Equal(t, StateActive, rv.State)
	assert.True(t, rv.IsVerified)
	require.Len(t, events, 1)
	assert.Equal(t, proID, events[0].UserID)
	assert.Equal(t, notification.KindNewReview, events[0].Kind)

	_, _, err = f.svc.CreateReview(ctx, m.ID, clientID, Ratings{Overall: 4}, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	can, err := f.svc.CanLeaveReview(ctx, m.ID, clientID)
	require.NoError(t, err)
	assert.False(t, can)

	s, err := f.agg.Get(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Rating)
	assert.Equal(t, int64(1), s.ReviewCount)
}

func TestStoreRejectsSecondLiveReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := NewRepository(f.db)
	m := f.completedMatch(t, clientID, proID)

	first := &MatchReview{MatchID: m.ID, ReviewerID: clientID, ReviewedUserID: proID, OverallRating: 5, State: StateActive}
	require.NoError(t, repo.Create(ctx, first))

	second := &MatchReview{MatchID: m.ID, ReviewerID: clientID, ReviewedUserID: proID, OverallRating: 3, State: StateActive}
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	// a deleted row no longer blocks a new one
	ok, err := repo.SoftDelete(ctx, first.ID, StateDeletedByAuthor, clientID, nil, f.clock)
	require.NoError(t, err)
	require.True(t, ok)
	third := &MatchReview{MatchID: m.ID, ReviewerID: clientID, ReviewedUserID: proID, OverallRating: 3, State: StateActive}
	require.NoError(t, repo.Create(ctx, third))
}

func TestCreateReviewPreconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	open := f.newMatch(t, clientID, proID)
	done := f.completedMatch(t, clientID, proID)

	_, _, err := f.svc.CreateReview(ctx, open.ID, clientID, Ratings{Overall: 5}, "")
	assert.ErrorIs(t, err, ErrCompletionNotConfirmed)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	// a request alone is not enough
	_, _, err = f.completion.RequestCompletion(ctx, open.ID, proID, "")
	require.NoError(t, err)
	_, _, err = f.svc.CreateReview(ctx, open.ID, proID, Ratings{Overall: 5}, "")
	assert.ErrorIs(t, err, ErrCompletionNotConfirmed)

	_, _, err = f.svc.CreateReview(ctx, done.ID, outsiderID, Ratings{Overall: 5}, "")
	assert.ErrorIs(t, err, match.ErrNotParticipant)

	_, _, err = f.svc.CreateReview(ctx, 9999, clientID, Ratings{Overall: 5}, "")
	assert.ErrorIs(t, err, match.ErrMatchNotFound)

	_, _, err = f.svc.CreateReview(ctx, done.ID, clientID, Ratings{Overall: 6}, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = f.svc.CreateReview(ctx, done.ID, clientID, Ratings{Overall: 4, Punctuality: intp(0)}, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, _, err = f.svc.CreateReview(ctx, done.ID, clientID, Ratings{Overall: 4}, strings.Repeat("я", MaxCommentLength+1))
	assert.ErrorIs(t, err, ErrCommentTooLong)

	_, _, err = f.svc.CreateReview(ctx, done.ID, clientID, Ratings{Overall: 4}, strings.Repeat("я", MaxCommentLength))
	assert.NoError(t, err)
}

func TestLegacyMatchWithoutJob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := &match.Match{ProposalID: 77, ClientID: clientID, ProfessionalID: proID, ProjectID: 77, Status: match.StatusActive}
	require.NoError(t, match.NewRepository(f.db).Create(ctx, m))

	_, _, err := f.svc.CreateReview(ctx, m.ID, proID, Ratings{Overall: 4}, "")
	assert.ErrorIs(t, err, ErrCompletionNotConfirmed)

	require.NoError(t, f.db.Model(&match.Match{}).Where("id = ?", m.ID).Update("status", match.StatusCompleted).Error)
	_, _, err = f.svc.CreateReview(ctx, m.ID, proID, Ratings{Overall: 4}, "")
	assert.NoError(t, err)
}

func TestEditWindow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	late := f.completedMatch(t, clientID, proID)
	early := f.completedMatch(t, clientID, proID)

	lateReview, _, err := f.svc.CreateReview(ctx, late.ID, clientID, Ratings{Overall: 3}, "")
	require.NoError(t, err)
	earlyReview, _, err := f.svc.CreateReview(ctx, early.ID, clientID, Ratings{Overall: 3}, "")
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	updated, err := f.svc.UpdateReview(ctx, earlyReview.ID, clientID, Patch{Overall: intp(5), Comment: strp("changed my mind")})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.OverallRating)
	assert.Equal(t, StateEdited, updated.State)
	assert.Equal(t, "changed my mind", updated.Comment)

	f.clock = f.clock.Add(24 * time.Hour)
	_, err = f.svc.UpdateReview(ctx, lateReview.ID, clientID, Patch{Overall: intp(1)})
	assert.ErrorIs(t, err, ErrEditWindowClosed)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	s, err := f.agg.Get(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Rating)
	assert.Equal(t, int64(2), s.ReviewCount)
}

func strp(s string) *string { return &s }

func TestUpdateReviewGuards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.completedMatch(t, clientID, proID)

	rv, _, err := f.svc.CreateReview(ctx, m.ID, clientID, Ratings{Overall: 4, Quality: intp(4)}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateReview(ctx, rv.ID, proID, Patch{Overall: intp(1)})
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.UpdateReview(ctx, rv.ID, clientID, Patch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = f.svc.UpdateReview(ctx, rv.ID, clientID, Patch{Quality: intp(9)})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.svc.UpdateReview(ctx, 9999, clientID, Patch{Overall: intp(1)})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// counterparty reviews: both sides are now frozen
	other, _, err := f.svc.CreateReview(ctx, m.ID, proID, Ratings{Overall: 2}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateReview(ctx, rv.ID, clientID, Patch{Overall: intp(1)})
	assert.ErrorIs(t, err, ErrCounterpartyReviewed)
	_, err = f.svc.UpdateReview(ctx, other.ID, proID, Patch{Overall: intp(5)})
	assert.ErrorIs(t, err, ErrCounterpartyReviewed)
	err = f.svc.DeleteReview(ctx, rv.ID, clientID, "")
	assert.ErrorIs(t, err, ErrCounterpartyReviewed)

	stored, err := NewRepository(f.db).GetByID(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.OverallRating)
	require.NotNil(t, stored.QualityRating)
	assert.Equal(t, 4, *stored.QualityRating)
}

func TestUpdateReviewLosesToConcurrentRemoval(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.completedMatch(t, clientID, proID)
	repo := NewRepository(f.db)

	rv, _, err := f.svc.CreateReview(ctx, m.ID, clientID, Ratings{Overall: 5}, "")
	require.NoError(t, err)

	// the review is removed after it was loaded but before the edit is written
	f.svc.now = func() time.Time {
		_, err := repo.SoftDelete(ctx, rv.ID, StateDeletedByModerator, 1, nil, f.clock)
		require.NoError(t, err)
		return f.clock
	}

	updated, err := f.svc.UpdateReview(ctx, rv.ID, clientID, Patch{Overall: intp(1)})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	stored, err := repo.GetByID(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDeletedByModerator, stored.State)
	assert.Equal(t, 5, stored.OverallRating)

	ok, err := repo.Save(ctx, stored)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m1 := f.completedMatch(t, clientID, proID)
	m2 := f.completedMatch(t, outsiderID, proID)

	rv1, _, err := f.svc.CreateReview(ctx, m1.ID, clientID, Ratings{Overall: 2}, "")
	require.NoError(t, err)
	_, _, err = f.svc.CreateReview(ctx, m2.ID, outsiderID, Ratings{Overall: 5}, "")
	require.NoError(t, err)

	s, err := f.agg.Get(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, s.Rating)

	err = f.svc.DeleteReview(ctx, rv1.ID, proID, "")
	assert.ErrorIs(t, err, ErrNotAuthor)

	require.NoError(t, f.svc.DeleteReview(ctx, rv1.ID, clientID, "  posted by mistake "))

	stored, err := NewRepository(f.db).GetByID(ctx, rv1.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDeletedByAuthor, stored.State)
	require.NotNil(t, stored.DeletedAt)
	require.NotNil(t, stored.DeletedBy)
	assert.Equal(t, clientID, *stored.DeletedBy)
	require.NotNil(t, stored.DeleteReason)
	assert.Equal(t, "posted by mistake", *stored.DeleteReason)

	s, err = f.agg.Get(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Rating)
	assert.Equal(t, int64(1), s.ReviewCount)

	err = f.svc.DeleteReview(ctx, rv1.ID, clientID, "")
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// deleting the own review reopens eligibility
	can, err := f.svc.CanLeaveReview(ctx, m1.ID, clientID)
	require.NoError(t, err)
	assert.True(t, can)
}

func TestReviewStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	empty, err := f.svc.GetReviewStats(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalReviews)
	assert.Equal(t, 0.0, empty.AverageRating)
	assert.Equal(t, map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, empty.Distribution)

	inputs := []Ratings{
		{Overall: 5, Quality: intp(5), Communication: intp(4)},
		{Overall: 4, Quality: intp(4)},
		{Overall: 4},
	}
	for i, in := range inputs {
		m := f.completedMatch(t, int64(1000+i), proID)
		_, _, err := f.svc.CreateReview(ctx, m.ID, int64(1000+i), in, "")
		require.NoError(t, err)
	}

	st, err := f.svc.GetReviewStats(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalReviews)
	assert.Equal(t, 4.3, st.AverageRating)
	assert.Equal(t, 4.5, st.AverageQuality)
	assert.Equal(t, 4.0, st.AverageCommunication)
	assert.Equal(t, 0.0, st.AveragePunctuality)
	assert.Equal(t, map[int]int64{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, st.Distribution)

	s, err := f.agg.Get(ctx, proID)
	require.NoError(t, err)
	assert.Equal(t, st.AverageRating, s.Rating)
	assert.Equal(t, st.TotalReviews, s.ReviewCount)
}

func TestReviewStatusAndListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.completedMatch(t, clientID, proID)

	st, err := f.svc.GetReviewStatus(ctx, m.ID, clientID)
	require.NoError(t, err)
	assert.False(t, st.ClientReviewed)
	assert.False(t, st.BothReviewed)

	_, _, err = f.svc.CreateReview(ctx, m.ID, proID, Ratings{Overall: 5}, "pleasure")
	require.NoError(t, err)
	st, err = f.svc.GetReviewStatus(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.True(t, st.ProfessionalReviewed)
	assert.False(t, st.ClientReviewed)
	require.NotNil(t, st.ProfessionalReview)
	assert.Equal(t, "pleasure", st.ProfessionalReview.Comment)

	_, _, err = f.svc.CreateReview(ctx, m.ID, clientID, Ratings{Overall: 4}, "")
	require.NoError(t, err)
	st, err = f.svc.GetReviewStatus(ctx, m.ID, proID)
	require.NoError(t, err)
	assert.True(t, st.BothReviewed)

	_, err = f.svc.GetReviewStatus(ctx, m.ID, outsiderID)
	assert.ErrorIs(t, err, match.ErrNotParticipant)

	list, err := f.svc.ListForUser(ctx, clientID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, proID, list.Reviews[0].ReviewerID)
}

func TestCheckAuthorActionStates(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	base := MatchReview{ReviewerID: 1, CreatedAt: now}

	for _, st := range []State{StateActive, StateEdited} {
		rv := base
		rv.State = st
		assert.NoError(t, rv.checkAuthorAction(actionEdit, 1, false, now.Add(time.Hour), DefaultEditWindow))
		assert.NoError(t, rv.checkAuthorAction(actionDelete, 1, false, now.Add(48*time.Hour), DefaultEditWindow))
		assert.ErrorIs(t, rv.checkAuthorAction(actionEdit, 1, false, now.Add(25*time.Hour), DefaultEditWindow), ErrEditWindowClosed)
	}
	for _, st := range []State{StateDeletedByAuthor, StateDeletedByModerator} {
		rv := base
		rv.State = st
		assert.ErrorIs(t, rv.checkAuthorAction(actionDelete, 1, false, now, DefaultEditWindow), ErrAlreadyDeleted)
	}
	assert.ErrorIs(t, base.checkAuthorAction(actionEdit, 2, false, now, DefaultEditWindow), ErrNotAuthor)
}
