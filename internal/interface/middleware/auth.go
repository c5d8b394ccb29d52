package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
	ctxUser     = "user"
)

// Authenticate resolves the session cookie to a stored user. On success the
// user id and the user are available through UserID and CurrentUser.
func Authenticate(users repo.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return gate(users, jwt, false)
}

// AuthenticateAdmin is Authenticate plus a role check.
func AuthenticateAdmin(users repo.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return gate(users, jwt, true)
}

func gate(users repo.UserRepository, jwt *helpers.JWTManager, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := resolve(c, users, jwt)
		if err == nil && adminOnly && u.Role != entity.RoleAdmin {
			err = apperror.Forbidden("Access denied. Admin only!")
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(ctxUserID, u.ID)
		c.Set(ctxUserRole, string(u.Role))
		c.Set(ctxUser, u)
		c.Next()
	}
}

func resolve(c *gin.Context, users repo.UserRepository, jwt *helpers.JWTManager) (*entity.User, error) {
	token, err := c.Cookie(helpers.SessionCookie)
	if err != nil || token == "" {
		return nil, apperror.Auth("Token not found!")
	}
	claims, err := jwt.Parse(token)
	if errors.Is(err, helpers.ErrMissingSubject) {
		return nil, apperror.Auth("Invalid token payload!").WithErr(err)
	}
	if err != nil {
		return nil, apperror.Auth("Not authorized, login again!").WithErr(err)
	}
	u, err := users.FindByID(c.Request.Context(), claims.UserID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, apperror.Auth("User not found!").WithErr(err)
	case err != nil:
		// includes ids the store cannot parse
		return nil, apperror.Auth("Not authorized, login again!").WithErr(err)
	}
	return u, nil
}

// UserID returns the id set by the session gate, or "".
func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

// UserRole returns the role set by the session gate, or "".
func UserRole(c *gin.Context) entity.Role { return entity.Role(c.GetString(ctxUserRole)) }

// CurrentUser returns the user loaded by the session gate.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}
