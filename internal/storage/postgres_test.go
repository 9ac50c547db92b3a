package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/szabala94/KalamburyPro-master/internal"
)

var repo *Repo

func TestMain(m *testing.M) {
	ctx := context.Background()

	pwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	schemaDir := filepath.Join(pwd, "schema")

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("kalambury_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
			hostConfig.Binds = append(hostConfig.Binds, schemaDir+":/docker-entrypoint-initdb.d")
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	repo, err = NewRepo(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	repo.Close()
	_ = pgContainer.Terminate(ctx)
	os.Exit(code)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateUser", func(t *testing.T) {
		require.NoError(t, repo.CreateUser(ctx, "alice", "hash-a"))
	})

	t.Run("CreateUserDuplicate", func(t *testing.T) {
		assert.ErrorIs(t, repo.CreateUser(ctx, "alice", "hash-b"), internal.ErrConflict)
	})

	t.Run("GetUser", func(t *testing.T) {
		user, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "hash-a", user.PasswordHash)
		assert.Zero(t, user.Points)
	})

	t.Run("GetUserMissing", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, internal.ErrNotFound)
	})

	t.Run("AddPoints", func(t *testing.T) {
		require.NoError(t, repo.AddPoints(ctx, "alice", 1))
		require.NoError(t, repo.AddPoints(ctx, "alice", 2))

		points, err := repo.GetPoints(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 3, points)
	})

	t.Run("AddPointsMissingUser", func(t *testing.T) {
		assert.ErrorIs(t, repo.AddPoints(ctx, "nobody", 1), internal.ErrNotFound)
	})

	t.Run("GetPointsMissingUser", func(t *testing.T) {
		_, err := repo.GetPoints(ctx, "nobody")
		assert.ErrorIs(t, err, internal.ErrNotFound)
	})
}

func TestWords(t *testing.T) {
	ctx := context.Background()

	t.Run("Bounds", func(t *testing.T) {
		minID, err := repo.MinWordID(ctx)
		require.NoError(t, err)
		maxID, err := repo.MaxWordID(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, minID, maxID)
	})

	t.Run("FindWordByID", func(t *testing.T) {
		minID, err := repo.MinWordID(ctx)
		require.NoError(t, err)

		word, err := repo.FindWordByID(ctx, minID)
		require.NoError(t, err)
		assert.NotEmpty(t, word.Text)
	})

	t.Run("FindWordByIDGap", func(t *testing.T) {
		_, err := repo.FindWordByID(ctx, 1<<40)
		assert.ErrorIs(t, err, internal.ErrNotFound)
	})
}
