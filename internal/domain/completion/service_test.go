package completion

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
	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/pkg/apperr"
)

const (
	clientID   int64 = 11
	proID      int64 = 22
	outsiderID int64 = 33
)

type fixture struct {
	db  *gorm.DB
	svc *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:completion_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")), database.Options{Silent: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&match.Match{}, &job.Job{}))
	return &fixture{db: db, svc: NewService(db, match.NewRepository(db), job.NewRepository(db))}
}

// seed creates a match and, when withJob is set, its job keyed by project.
func (f *fixture) seed(t *testing.T, projectID int64, withJob bool) *match.Match {
	t.Helper()
	ctx := context.Background()
	if withJob {
		require.NoError(t, job.NewRepository(f.db).Create(ctx, &job.Job{
			ProjectID: projectID, ClientID: clientID, ProfessionalID: proID, Status: job.StatusInProgress,
		}))
	}
	m := &match.Match{ProposalID: projectID, ClientID: clientID, ProfessionalID: proID, ProjectID: projectID, Status: match.StatusActive}
	require.NoError(t, match.NewRepository(f.db).Create(ctx, m))
	return m
}

func TestHandshakeCompletesMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.seed(t, 1, true)

	st, events, err := f.svc.RequestCompletion(ctx, m.ID, clientID, "all done")
	require.NoError(t, err)
	require.NotNil(t, st.RequestedBy)
	assert.Equal(t, clientID, *st.RequestedBy)
	assert.False(t, st.IsCompleted)
	assert.Equal(t, match.StatusActive, st.MatchStatus)
	require.Len(t, events, 1)
	assert.Equal(t, proID, events[0].UserID)
	assert.Equal(t, notification.KindCompletionRequested, events[0].Kind)
	assert.Contains(t, events[0].Message, "all done")

	st, events, err = f.svc.ConfirmCompletion(ctx, m.ID, proID)
	require.NoError(t, err)
	assert.True(t, st.IsCompleted)
	assert.True(t, st.CanReview)
	assert.Equal(t, match.StatusCompleted, st.MatchStatus)
	require.Len(t, events, 1)
	assert.Equal(t, clientID, events[0].UserID)

	stored, err := match.NewRepository(f.db).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusCompleted, stored.Status)

	j, err := job.NewRepository(f.db).GetByProjectID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, j.Status)
	require.NotNil(t, j.CompletionConfirmedBy)
	assert.Equal(t, proID, *j.CompletionConfirmedBy)

	open, err := f.svc.ReviewGateOpen(ctx, stored)
	require.NoError(t, err)
	assert.True(t, open)

	_, _, err = f.svc.ConfirmCompletion(ctx, m.ID, proID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	_, _, err = f.svc.RequestCompletion(ctx, m.ID, proID, "")
	assert.ErrorIs(t, err, ErrMatchNotActive)
}

func TestSelfConfirmationAlwaysRejected(t *testing.T) {
	for i, requester := range []int64{clientID, proID} {
		t.Run(fmt.Sprintf("requester_%d", requester), func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			m := f.seed(t, int64(i+1), true)

			_, _, err := f.svc.RequestCompletion(ctx, m.ID, requester, "")
			require.NoError(t, err)

			_, _, err = f.svc.ConfirmCompletion(ctx, m.ID, requester)
			assert.ErrorIs(t, err, ErrSelfConfirmation)
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

			st, err := f.svc.GetCompletionStatus(ctx, m.ID, 0)
			require.NoError(t, err)
			assert.False(t, st.IsCompleted)
			assert.Equal(t, match.StatusActive, st.MatchStatus)
		})
	}
}

func TestRequestCompletionErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.seed(t, 1, true)
	noJob := f.seed(t, 2, false)

	_, _, err := f.svc.RequestCompletion(ctx, m.ID, outsiderID, "")
	assert.ErrorIs(t, err, match.ErrNotParticipant)

	_, _, err = f.svc.RequestCompletion(ctx, 999, clientID, "")
	assert.ErrorIs(t, err, match.ErrMatchNotFound)

	_, _, err = f.svc.RequestCompletion(ctx, noJob.ID, clientID, "")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, _, err = f.svc.RequestCompletion(ctx, m.ID, clientID, "")
	require.NoError(t, err)
	_, _, err = f.svc.RequestCompletion(ctx, m.ID, clientID, "")
	assert.ErrorIs(t, err, ErrAlreadyRequested)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestConfirmWithoutRequest(t *testing.T) {
	f := setup(t)
	m := f.seed(t, 1, true)

	_, _, err := f.svc.ConfirmCompletion(context.Background(), m.ID, proID)
	assert.ErrorIs(t, err, ErrNotRequested)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestRequestOnInactiveMatch(t *testing.T) {
	f := setup(t)
	m := f.seed(t, 1, true)
	require.NoError(t, f.db.Model(&match.Match{}).Where("id = ?", m.ID).Update("status", match.StatusCancelled).Error)

	_, _, err := f.svc.RequestCompletion(context.Background(), m.ID, clientID, "")
	assert.ErrorIs(t, err, ErrMatchNotActive)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestExplicitJobReferenceWins(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	jobs := job.NewRepository(f.db)
	other := &job.Job{ProjectID: 500, ClientID: clientID, ProfessionalID: proID, Status: job.StatusInProgress}
	require.NoError(t, jobs.Create(ctx, other))

	m := &match.Match{ProposalID: 1, ClientID: clientID, ProfessionalID: proID, ProjectID: 1, JobID: &other.ID, Status: match.StatusActive}
	require.NoError(t, match.NewRepository(f.db).Create(ctx, m))

	_, _, err := f.svc.RequestCompletion(ctx, m.ID, proID, "")
	require.NoError(t, err)

	got, err := jobs.GetByID(ctx, other.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletionRequestedBy)
	assert.Equal(t, proID, *got.CompletionRequestedBy)
}

func TestStatusWithoutJob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.seed(t, 1, false)

	st, err := f.svc.GetCompletionStatus(ctx, m.ID, clientID)
	require.NoError(t, err)
	assert.Nil(t, st.RequestedBy)
	assert.Nil(t, st.ConfirmedAt)
	assert.False(t, st.IsCompleted)
	assert.False(t, st.CanReview)

	_, err = f.svc.GetCompletionStatus(ctx, m.ID, outsiderID)
	assert.ErrorIs(t, err, match.ErrNotParticipant)

	open, err := f.svc.ReviewGateOpen(ctx, m)
	require.NoError(t, err)
	assert.False(t, open)

	m.Status = match.StatusCompleted
	open, err = f.svc.ReviewGateOpen(ctx, m)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestConfirmUsesServiceClock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }
	m := f.seed(t, 1, true)

	_, _, err := f.svc.RequestCompletion(ctx, m.ID, proID, "")
	require.NoError(t, err)
	st, _, err := f.svc.ConfirmCompletion(ctx, m.ID, clientID)
	require.NoError(t, err)
	require.NotNil(t, st.ConfirmedAt)
	assert.True(t, st.ConfirmedAt.Equal(fixed))
}
