package entity

import (
	"strings"
	"time"
)

// DefaultAvatar is used when an account has no picture of its own.
const DefaultAvatar = "https://via.placeholder.com/150"

// User is the aggregate root for the auth domain.
// Password holds a bcrypt hash, never the plain text.
// A zero OTP expiry means no code is pending.
type User struct {
	ID                string
	Name              string
	Email             string
	Password          string
	Role              Role
	Avatar            string
	Phone             string
	IsAccountVerified bool

	VerifyOTP         string
	VerifyOTPExpireAt time.Time
	ResetOTP          string
	ResetOTPExpireAt  time.Time

	SavedItems []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail is applied before every lookup and write of an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatch lists the fields an Update may change. Nil means untouched.
type UserPatch struct {
	Name              *string
	Password          *string
	Role              *Role
	Avatar            *string
	Phone             *string
	IsAccountVerified *bool

	VerifyOTP         *string
	VerifyOTPExpireAt *time.Time
	ResetOTP          *string
	ResetOTPExpireAt  *time.Time
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Password == nil && p.Role == nil && p.Avatar == nil &&
		p.Phone == nil && p.IsAccountVerified == nil &&
		p.VerifyOTP == nil && p.VerifyOTPExpireAt == nil &&
		p.ResetOTP == nil && p.ResetOTPExpireAt == nil
}

// Apply copies the set fields onto u. Stores without partial updates use it.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.IsAccountVerified != nil {
		u.IsAccountVerified = *p.IsAccountVerified
	}
	if p.VerifyOTP != nil {
		u.VerifyOTP = *p.VerifyOTP
	}
	if p.VerifyOTPExpireAt != nil {
		u.VerifyOTPExpireAt = *p.VerifyOTPExpireAt
	}
	if p.ResetOTP != nil {
		u.ResetOTP = *p.ResetOTP
	}
	if p.ResetOTPExpireAt != nil {
		u.ResetOTPExpireAt = *p.ResetOTPExpireAt
	}
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }
