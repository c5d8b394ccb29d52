package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
	"github.com/oksasatya/flyobo-travel-api/internal/domain/repository"
	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/storetest"
)

func TestUserRepositoryContract(t *testing.T) {
	storetest.Run(t, NewUserRepository())
}

func TestConcurrentCreateKeepsEmailUnique(t *testing.T) {
	repo := NewUserRepository()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &entity.User{Name: "Ann", Email: "ann@x.com"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if err == repository.ErrDuplicateKey {
				dupes++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, created)
	require.Equal(t, 19, dupes)
	require.Equal(t, 1, repo.Count())
}

func TestReturnedUsersAreCopies(t *testing.T) {
	repo := NewUserRepository()
	u, err := repo.Create(context.Background(), &entity.User{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	u.Name = "changed"

	again, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", again.Name)
}
