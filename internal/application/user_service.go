package application

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	repo "github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

// AvatarStore persists an uploaded picture and returns its public URL.
type AvatarStore interface {
	Put(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
}

// UserService serves the signed-in user's own profile and the admin search.
type UserService struct {
	Repo    repo.UserRepository
	Avatars AvatarStore
	Index   *UserIndex
	Logger  *logrus.Logger
}

func NewUserService(r repo.UserRepository, avatars AvatarStore, index *UserIndex, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, Avatars: avatars, Index: index, Logger: logger}
}

type UpdateProfileInput struct {
	Name   *string
	Phone  *string
	Avatar *string
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(MsgUserNotFound)
	}
	return u, err
}

// UpdateProfile changes name, phone and avatar URL. Absent fields are kept.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	var patch entity.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len([]rune(name)) < 2 {
			return nil, apperror.Validation(MsgNameTooShort)
		}
		patch.Name = &name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		patch.Phone = &phone
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if avatar == "" {
			avatar = entity.DefaultAvatar
		}
		patch.Avatar = &avatar
	}
	if patch.Empty() {
		return s.GetProfile(ctx, userID)
	}
	u, err := s.Repo.Update(ctx, userID, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.Index.Index(ctx, u)
	return u, nil
}

// UploadAvatar stores the picture and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.Avatars == nil {
		return nil, apperror.Internal("Avatar upload is not configured", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Validation("Avatar must be an image")
	}
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	url, err := s.Avatars.Put(ctx, userID, filename, contentType, r)
	if err != nil {
		return nil, apperror.Internal("Error uploading avatar", err)
	}
	u, err := s.Repo.Update(ctx, userID, entity.UserPatch{Avatar: &url})
	if err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "avatar updated", logrus.Fields{"user_id": userID, "url": url})
	s.Index.Index(ctx, u)
	return u, nil
}

func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]UserHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Query is required")
	}
	return s.Index.Search(ctx, q, size)
}
