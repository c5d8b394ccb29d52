package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/memory"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

func TestUpsertAdminCreatesThenPromotes(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()

	u, created, err := upsertAdmin(ctx, users, "Administrator", "Admin@Flyobo.local", "first-pass")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "admin@flyobo.local", u.Email)
	require.Equal(t, entity.RoleAdmin, u.Role)
	require.True(t, u.IsAccountVerified)

	_, err = users.Update(ctx, u.ID, entity.UserPatch{Role: entity.Ptr(entity.RoleUser)})
	require.NoError(t, err)

	again, created, err := upsertAdmin(ctx, users, "Administrator", "admin@flyobo.local", "second-pass")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, u.ID, again.ID)
	require.Equal(t, entity.RoleAdmin, again.Role)
	require.True(t, helpers.CompareHashAndPassword(again.Password, "second-pass"))
	require.Equal(t, 1, users.Count())
}
