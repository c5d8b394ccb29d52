package validation

import (
	"errors"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,personname"`
	Email    string `json:"email" validate:"required,mailaddr"`
	Password string `json:"password" validate:"required,pwd"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

func TestIsEmail(t *testing.T) {
	for _, ok := range []string{"ann@x.com", "first.last@mail.co.id", "a-b@c-d.org"} {
		require.True(t, IsEmail(ok), ok)
	}
	for _, bad := range []string{"", "ann", "ann@", "@x.com", "ann@x", "ann@x.comm3"} {
		require.False(t, IsEmail(bad), bad)
	}
}

func TestMissingFields(t *testing.T) {
	err := newValidator().Struct(signup{Email: "ann@x.com"})
	require.Error(t, err)
	require.True(t, IsMissing(err))

	details := ToDetails(err)
	require.Equal(t, "is required", details["name"])
	require.Equal(t, "is required", details["password"])
	require.NotContains(t, details, "email")
}

func TestInvalidFields(t *testing.T) {
	err := newValidator().Struct(signup{Name: "A", Email: "nope", Password: "123"})
	require.Error(t, err)
	require.False(t, IsMissing(err))

	details := ToDetails(err)
	require.Equal(t, "must be at least 2 characters long", details["name"])
	require.Equal(t, "must be a valid email", details["email"])
	require.Equal(t, "must be at least 6 characters long", details["password"])
	require.Equal(t, "email must be a valid email; name must be at least 2 characters long; password must be at least 6 characters long", Summary(details))
}

func TestEmptyBodyIsMissing(t *testing.T) {
	require.True(t, IsMissing(io.EOF))
	require.False(t, IsMissing(errors.New("boom")))
	require.Equal(t, "empty body", ToDetails(io.EOF)["payload"])
}
