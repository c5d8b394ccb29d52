package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
	"github.com/oksasatya/flyobo-travel-api/pkg/response"
)

const internalMessage = "Internal Server Error!"

// Normalize maps any error onto the application taxonomy. Store and token
// faults that escaped a service get their fixed client messages; anything
// unknown becomes an internal error.
func Normalize(err error) *apperror.Error {
	if ae, ok := apperror.As(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, repo.ErrInvalidID):
		return apperror.Validation("Resource not found. Invalid id").WithErr(err)
	case errors.Is(err, repo.ErrDuplicateKey):
		return apperror.Conflict("Duplicate email entered").WithErr(err)
	case errors.Is(err, repo.ErrNotFound):
		return apperror.NotFound("Resource not found").WithErr(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperror.Auth("JSON Web Token has expired, try again").WithErr(err)
	case isJWTError(err):
		return apperror.Auth("JSON Web Token is invalid, try again").WithErr(err)
	}
	return apperror.Internal(internalMessage, err)
}

func isJWTError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenInvalidClaims,
		jwt.ErrTokenNotValidYet,
		helpers.ErrMissingSubject,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorHandler renders the last error a handler attached with c.Error, unless
// a response was already written.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := Normalize(c.Errors.Last().Err)
		status := appErr.Status()
		if status >= http.StatusInternalServerError && logger != nil {
			logger.WithError(appErr.Unwrap()).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
			}).Error(appErr.Message)
		}
		response.Error(c, status, appErr.Message, appErr.Details)
	}
}

// Recovery turns a panic into the internal error envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"panic":      recovered,
				"path":       c.Request.URL.Path,
			}).Error("panic recovered")
		}
		response.Error(c, http.StatusInternalServerError, internalMessage, nil)
	})
}
