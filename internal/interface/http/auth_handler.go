package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/internal/application"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/middleware"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
	"github.com/oksasatya/flyobo-travel-api/pkg/response"
	"github.com/oksasatya/flyobo-travel-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

// bind decodes the JSON body into dst. A body that only lacks required fields
// fails with missing; any other problem fails with the per-field details.
func bind(c *gin.Context, dst any, missing string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if validation.IsMissing(err) {
		_ = c.Error(apperror.Validation(missing).WithErr(err))
		return false
	}
	details := validation.ToDetails(err)
	_ = c.Error(apperror.Validation(validation.Summary(details)).WithDetails(details).WithErr(err))
	return false
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

func (h *AuthHandler) startSession(c *gin.Context, sess *application.Session) {
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req, application.MsgRegisterMissing) {
		return
	}
	sess, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Meta:     requestMeta(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.startSession(c, sess)
	response.User(c, http.StatusCreated, "Registration successful", toRegistered(sess.User))
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req, application.MsgLoginMissing) {
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.startSession(c, sess)
	response.User(c, http.StatusOK, "Login successful", toLoggedIn(sess.User))
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, "Logout successful")
}

// IsAuthenticated GET /api/v1/auth/isAuthenticated. The gate did the work.
func (h *AuthHandler) IsAuthenticated(c *gin.Context) {
	response.JSON(c, http.StatusOK, response.Envelope{Success: true})
}

// SendVerifyOTP POST /api/v1/auth/send-verify-otp
func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	if err := h.Svc.SendVerifyOTP(c.Request.Context(), middleware.UserID(c), requestMeta(c)); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OTP sent successfully")
}

// VerifyEmail POST /api/v1/auth/verify-email
//
// Failures are reported in the body with status 200; web clients branch on
// success rather than the status code.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	_ = c.ShouldBindJSON(&req)

	err := h.Svc.VerifyEmail(c.Request.Context(), middleware.UserID(c), req.OTP)
	if err == nil {
		response.Success(c, http.StatusOK, "Email Verified")
		return
	}
	msg := application.MsgVerifyFailed
	if appErr, ok := apperror.As(err); ok {
		msg = appErr.Message
	}
	if apperror.KindOf(err) == apperror.KindInternal {
		helpers.LogError(h.Logger, "verify email failed", err, logrus.Fields{"user_id": middleware.UserID(c)})
	}
	response.JSON(c, http.StatusOK, response.Envelope{Success: false, Message: msg})
}

// SendResetOTP POST /api/v1/auth/send-reset-otp
func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req, application.MsgEmailMissing) {
		return
	}
	if err := h.Svc.SendResetOTP(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Reset Password OTP sent successfully")
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bind(c, &req, application.MsgResetMissing) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword, req.OTP); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset successfully")
}

// Google POST /api/v1/auth/google. The caller has already verified the
// Google identity on the client.
func (h *AuthHandler) Google(c *gin.Context) {
	var req googleRequest
	if !bind(c, &req, application.MsgGoogleMissing) {
		return
	}
	sess, created, err := h.Svc.GoogleAuth(c.Request.Context(), application.GoogleInput{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.GooglePhotoURL,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.startSession(c, sess)
	if created {
		response.User(c, http.StatusCreated, "Registration successful", toPublic(sess.User))
		return
	}
	response.User(c, http.StatusOK, "Login successful", toPublic(sess.User))
}
