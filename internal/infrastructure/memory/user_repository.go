package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
)

// UserRepository keeps users in process memory. Used for local runs and tests.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return nil, repository.ErrDuplicateKey
	}
	stored := clone(u)
	stored.ID = uuid.NewString()
	now := r.now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return clone(stored), nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(u)
	u.UpdatedAt = r.now().UTC()
	return clone(u), nil
}

// Count is used by tests to assert no duplicate rows were written.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func clone(u *entity.User) *entity.User {
	c := *u
	c.SavedItems = append([]string(nil), u.SavedItems...)
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
