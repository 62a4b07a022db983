package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/models"
	"github.com/taonaire/catalog-backend/internal/repository"
	"github.com/taonaire/catalog-backend/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	user := &models.User{Name: "Alice", Email: "a@x.com", Password: strPtr("hash"), AuthProvider: models.ProviderLocal}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", AuthProvider: models.ProviderLocal}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "a@x.com", AuthProvider: models.ProviderLocal})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "a@x.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserRepositoryNullGoogleIDsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", AuthProvider: models.ProviderLocal}))
	require.NoError(t, repo.Create(ctx, &models.User{Name: "B", Email: "b@x.com", AuthProvider: models.ProviderLocal}))
}

func TestUserRepositoryLinkGoogle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	user := &models.User{Name: "A", Email: "a@x.com", Password: strPtr("hash"), AuthProvider: models.ProviderLocal}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.LinkGoogle(ctx, user, "g-123", models.ProviderLocalGoogle))

	found, err := repo.FindByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, models.ProviderLocalGoogle, found.AuthProvider)
}
