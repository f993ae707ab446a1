package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"servicematch/internal/database"
	"servicematch/internal/domain/user"
	"servicematch/internal/pkg/apperr"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByIDs(ctx context.Context, ids []int64) (map[int64]*user.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*user.User), args.Error(1)
}

func setupWithDirectory(t *testing.T, dir Directory) *Service {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:match_dir_%s?mode=memory&cache=shared", t.Name()), database.Options{Silent: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Match{}))
	return NewService(db, NewRepository(db), dir)
}

func TestHydrationFromDirectory(t *testing.T) {
	dir := new(MockDirectory)
	svc := setupWithDirectory(t, dir)
	ctx := context.Background()

	dir.On("FindByIDs", mock.Anything, []int64{10, 20}).Return(map[int64]*user.User{
		10: {ID: 10, Name: "Dana"},
		// 20 is unknown to the directory
	}, nil)

	m, err := svc.CreateMatch(ctx, CreateInput{ProposalID: 1, ClientID: 10, ProfessionalID: 20, ProjectID: 3})
	require.NoError(t, err)
	require.NotNil(t, m.Client)
	assert.Equal(t, "Dana", m.Client.Name)
	require.NotNil(t, m.Professional)
	assert.Equal(t, int64(20), m.Professional.ID)
	assert.Empty(t, m.Professional.Name)

	dir.AssertExpectations(t)
}

func TestDirectoryFailureSurfacesAsPersistence(t *testing.T) {
	dir := new(MockDirectory)
	svc := setupWithDirectory(t, dir)
	ctx := context.Background()

	dir.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	_, err := svc.CreateMatch(ctx, CreateInput{ProposalID: 2, ClientID: 10, ProfessionalID: 20, ProjectID: 3})
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))

	dir.AssertExpectations(t)
}
