// Package storetest holds the behaviour every UserRepository driver must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
)

// Run exercises repo against the repository contract. The repo must start empty.
func Run(t *testing.T, repo repository.UserRepository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, &entity.User{
		Name:     "Ann",
		Email:    "ann@x.com",
		Password: "hash",
		Role:     entity.RoleUser,
		Avatar:   entity.DefaultAvatar,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.False(t, created.IsAccountVerified)

	t.Run("find by email and id", func(t *testing.T) {
		byEmail, err := repo.FindByEmail(ctx, "ann@x.com")
		require.NoError(t, err)
		require.Equal(t, created.ID, byEmail.ID)
		require.Equal(t, "hash", byEmail.Password)

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "ann@x.com", byID.Email)
		require.Equal(t, entity.RoleUser, byID.Role)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@x.com")
		require.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "not-an-id")
		require.ErrorIs(t, err, repository.ErrInvalidID)
		_, err = repo.Update(ctx, "not-an-id", entity.UserPatch{Name: entity.Ptr("x")})
		require.ErrorIs(t, err, repository.ErrInvalidID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.User{Name: "Ann2", Email: "ann@x.com", Password: "h", Role: entity.RoleUser})
		require.ErrorIs(t, err, repository.ErrDuplicateKey)
	})

	t.Run("partial update", func(t *testing.T) {
		exp := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Millisecond)
		updated, err := repo.Update(ctx, created.ID, entity.UserPatch{
			VerifyOTP:         entity.Ptr("123456"),
			VerifyOTPExpireAt: entity.Ptr(exp),
		})
		require.NoError(t, err)
		require.Equal(t, "Ann", updated.Name)
		require.Equal(t, "123456", updated.VerifyOTP)
		require.WithinDuration(t, exp, updated.VerifyOTPExpireAt, time.Millisecond)

		cleared, err := repo.Update(ctx, created.ID, entity.UserPatch{
			IsAccountVerified: entity.Ptr(true),
			VerifyOTP:         entity.Ptr(""),
			VerifyOTPExpireAt: entity.Ptr(time.Time{}),
		})
		require.NoError(t, err)
		require.True(t, cleared.IsAccountVerified)
		require.Empty(t, cleared.VerifyOTP)
		require.True(t, cleared.VerifyOTPExpireAt.IsZero())
		require.False(t, cleared.UpdatedAt.Before(created.UpdatedAt))

		again, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, again.IsAccountVerified)
	})

	t.Run("update missing user", func(t *testing.T) {
		_, err := repo.Update(ctx, missingID(created.ID), entity.UserPatch{Name: entity.Ptr("x")})
		require.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repo.FindByID(ctx, missingID(created.ID))
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// missingID returns an id in the same format as id that no row holds.
func missingID(id string) string {
	b := []byte(id)
	last := len(b) - 1
	if b[last] == '0' {
		b[last] = '1'
	} else {
		b[last] = '0'
	}
	return string(b)
}
