package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/application"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/memory"
	"github.com/oksasatya/flyobo-travel-api/internal/interface/middleware"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

type fakeAvatars struct {
	got []byte
}

func (f *fakeAvatars) Put(_ context.Context, userID, filename, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.got = b
	return "https://storage.googleapis.com/avatars/" + userID + "/" + filename, nil
}

func avatarEngine(t *testing.T, store application.AvatarStore) (*gin.Engine, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	users := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("avatar-secret", time.Hour)

	u, err := users.Create(context.Background(), &entity.User{Name: "Ann", Email: "ann@x.com", Role: entity.RoleUser, Avatar: entity.DefaultAvatar})
	require.NoError(t, err)
	token, _, err := jwt.Generate(u.ID)
	require.NoError(t, err)

	h := NewUserHandler(application.NewUserService(users, store, nil, logger), logger)
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger))
	r.POST("/avatar", middleware.Authenticate(users, jwt), h.UploadAvatar)
	return r, token
}

func uploadRequest(t *testing.T, token, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: token})
	return req
}

func TestUploadAvatar(t *testing.T) {
	store := &fakeAvatars{}
	r, token := avatarEngine(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, token, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Contains(t, res.User["avatar"], "/me.png")
	require.Equal(t, []byte("png-bytes"), store.got)
}

func TestUploadAvatarRejectsNonImages(t *testing.T) {
	r, token := avatarEngine(t, &fakeAvatars{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, token, "application/pdf", []byte("%PDF")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Avatar must be an image")
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	r, token := avatarEngine(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, token, "image/png", []byte("png")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUploadAvatarWithoutFile(t *testing.T) {
	r, token := avatarEngine(t, &fakeAvatars{})
	req := httptest.NewRequest(http.MethodPost, "/avatar", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Please provide an avatar image")
}
