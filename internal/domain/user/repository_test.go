package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicematch/internal/database"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:user_%s?mode=memory&cache=shared", t.Name()), database.Options{Silent: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	return NewRepository(db)
}

func TestContactPhonePrefersWhatsApp(t *testing.T) {
	u := &User{Phone: "+77010000000", WhatsAppNumber: "+77019999999"}
	assert.Equal(t, "+77019999999", u.ContactPhone())

	u.WhatsAppNumber = ""
	assert.Equal(t, "+77010000000", u.ContactPhone())
}

func TestFindByID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &User{ID: 7, Name: "Aigerim", Phone: "+77011112233"}))

	u, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Aigerim", u.Name)

	missing, err := repo.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := repo.FindByIDs(ctx, []int64{7, 99})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
}
