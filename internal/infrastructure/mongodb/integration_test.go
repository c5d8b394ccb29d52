//go:build integration

package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/oksasatya/flyobo-travel-api/internal/infrastructure/storetest"
)

func TestUserRepositoryContract(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate mongo container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	repo := NewUserRepository(client.Database("flyobo_test"))
	require.NoError(t, repo.EnsureIndexes(ctx))

	storetest.Run(t, repo)
}
