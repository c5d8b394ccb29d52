package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
)

func TestBuildPatch(t *testing.T) {
	set, args := buildPatch(entity.UserPatch{
		Name:              entity.Ptr("Ann"),
		IsAccountVerified: entity.Ptr(true),
		VerifyOTPExpireAt: entity.Ptr(time.Time{}),
	})
	require.Equal(t, []string{
		"name = $1",
		"is_account_verified = $2",
		"verify_otp_expire_at = $3",
		"updated_at = now()",
	}, set)
	require.Equal(t, []any{"Ann", true, nil}, args)
}

func TestBuildEmptyPatchOnlyTouchesTimestamp(t *testing.T) {
	set, args := buildPatch(entity.UserPatch{})
	require.Equal(t, []string{"updated_at = now()"}, set)
	require.Empty(t, args)
}
