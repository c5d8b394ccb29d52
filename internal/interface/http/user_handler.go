package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/internal/application"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/middleware"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/response"
)

const (
	maxAvatarBytes    = 5 << 20
	defaultSearchSize = 20
	maxSearchSize     = 50
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/v1/user/profile. The session gate already loaded the user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	if u, ok := middleware.CurrentUser(c); ok {
		response.User(c, http.StatusOK, "Profile", toPublic(u))
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, "Profile", toPublic(u))
}

// UpdateProfile PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bind(c, &req, application.MsgFieldsMissing) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), application.UpdateProfileInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Avatar: req.Avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, "Profile updated", toPublic(u))
}

// UploadAvatar POST /api/v1/user/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+1<<10)
	fh, err := c.FormFile("avatar")
	if err != nil {
		_ = c.Error(apperror.Validation("Please provide an avatar image").WithErr(err))
		return
	}
	if fh.Size > maxAvatarBytes {
		_ = c.Error(apperror.Validation("Avatar must be at most 5MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		_ = c.Error(apperror.Internal("Error reading avatar", err))
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.UserID(c), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, "Avatar updated", toPublic(u))
}

// Search GET /api/v1/user/search?q=&size= (admin only)
func (h *UserHandler) Search(c *gin.Context) {
	size := defaultSearchSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			_ = c.Error(apperror.Validation("size must be a positive number"))
			return
		}
		size = min(n, maxSearchSize)
	}
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if hits == nil {
		hits = []application.UserHit{}
	}
	response.Data(c, http.StatusOK, "Users", hits)
}
