package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestRepositoryCreateAndLookup(t *testing.T) {
	repo := NewRepository(newRepoTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		Name:         "Shopper",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	byEmail, err := repo.FindByEmail(ctx, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.True(t, byEmail.IsActive)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopper", byID.Name)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(newRepoTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "login@example.com",
		PasswordHash: "hash",
		Name:         "Login",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLoginAt)
	assert.WithinDuration(t, at, *loaded.LastLoginAt, time.Second)
}

func TestRepositoryUpdateProfile(t *testing.T) {
	repo := NewRepository(newRepoTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "profile@example.com",
		PasswordHash: "hash",
		Name:         "Before",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(ctx, created.ID, map[string]any{"name": "After"}))
	require.NoError(t, repo.UpdateProfile(ctx, created.ID, nil))

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", loaded.Name)
}
