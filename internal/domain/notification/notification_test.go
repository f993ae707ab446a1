package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"servicematch/internal/database"
	"servicematch/internal/domain/user"
	"servicematch/internal/pkg/apperr"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", t.Name()), database.Options{Silent: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Notification{}, &user.User{}))
	return db
}

type recordingSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestDispatcherFailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("smtp down")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(broken, ok)

	d.Publish(context.Background(),
		Event{UserID: 1, Kind: KindNewReview, Title: "a"},
		Event{UserID: 2, Kind: KindPhoneRevealed, Title: "b"},
	)
	d.Wait()

	assert.Len(t, broken.received(), 2)
	got := ok.received()
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].UserID)
	assert.Equal(t, KindPhoneRevealed, got[1].Kind)
}

func TestDispatcherIgnoresCancelledRequestContext(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, Event{UserID: 9, Kind: KindReviewRemoved})
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Len(t, sink.received(), 1)
}

func TestDispatcherNoEvents(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(sink)
	d.Publish(context.Background())
	d.Wait()
	assert.Empty(t, sink.received())
}

func TestStoreSinkAndInbox(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	d := NewDispatcher(NewStoreSink(repo), LogSink{})

	d.Publish(ctx,
		Event{UserID: 7, Kind: KindCompletionRequested, Title: "Completion requested", ActionRef: "/matches/1"},
		Event{UserID: 7, Kind: KindCompletionConfirmed, Title: "Completion confirmed"},
		Event{UserID: 8, Kind: KindNewReview, Title: "New review"},
	)
	d.Wait()

	svc := NewService(repo)
	res, err := svc.List(ctx, 7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(2), res.UnreadCount)

	var withRef *Notification
	for i := range res.Notifications {
		if res.Notifications[i].Type == KindCompletionRequested {
			withRef = &res.Notifications[i]
		}
	}
	require.NotNil(t, withRef)
	assert.Equal(t, "/matches/1", withRef.Data["action_ref"])

	require.NoError(t, svc.MarkAsRead(ctx, withRef.ID, 7))
	res, err = svc.List(ctx, 7, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UnreadCount)

	// someone else's notification
	err = svc.MarkAsRead(ctx, withRef.ID, 8)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	n, err := svc.MarkAllAsRead(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func TestEmailSink(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := user.NewRepository(db)
	withMail := &user.User{Name: "Ann", Email: "ann@example.com"}
	noMail := &user.User{Name: "Bob"}
	require.NoError(t, users.Create(ctx, withMail))
	require.NoError(t, users.Create(ctx, noMail))

	mailer := new(MockMailer)
	mailer.On("DialAndSend", mock.MatchedBy(func(msgs []*gomail.Message) bool {
		return len(msgs) == 1 &&
			assert.ObjectsAreEqual([]string{"ann@example.com"}, msgs[0].GetHeader("To")) &&
			assert.ObjectsAreEqual([]string{"Hello"}, msgs[0].GetHeader("Subject"))
	})).Return(nil).Once()
	sink := NewEmailSink("localhost", 25, "", "", "noreply@example.com", users)
	sink.sender = mailer

	require.NoError(t, sink.Deliver(ctx, Event{UserID: withMail.ID, Title: "Hello", Message: "<b>hi</b>"}))
	require.NoError(t, sink.Deliver(ctx, Event{UserID: noMail.ID, Title: "Hello"}))
	require.NoError(t, sink.Deliver(ctx, Event{UserID: 999, Title: "Hello"}))

	mailer.AssertExpectations(t)
	mailer.AssertNumberOfCalls(t, "DialAndSend", 1)
}

func TestEmailSinkPropagatesSendFailure(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := user.NewRepository(db)
	u := &user.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, users.Create(ctx, u))

	mailer := new(MockMailer)
	mailer.On("DialAndSend", mock.Anything).Return(errors.New("smtp: 421 try later"))
	sink := NewEmailSink("localhost", 25, "", "", "noreply@example.com", users)
	sink.sender = mailer

	err := sink.Deliver(ctx, Event{UserID: u.ID, Title: "Hello"})
	assert.Error(t, err)
	mailer.AssertExpectations(t)
}
