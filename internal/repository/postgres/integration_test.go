//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fbellini/daybook-server/internal/model"
	repo "github.com/fbellini/daybook-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "daybook_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/daybook_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	accounts := repo.NewAccountRepository(conn)
	reports := repo.NewReportRepository(conn)
	tokens := repo.NewRefreshTokenRepository(conn)

	t.Run("account_repository", func(t *testing.T) {
		now := time.Now()
		a := model.Account{
			ID:           uuid.New(),
			Handle:       "alice",
			Email:        "alice@example.com",
			Status:       model.AccountStatusActive,
			PasswordHash: []byte("hash"),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		saved, err := accounts.Create(ctx, a)
		require.NoError(t, err)
		require.Equal(t, a.ID, saved.ID)

		_, err = accounts.Create(ctx, model.Account{
			ID: uuid.New(), Handle: "alice", Email: "alice2@example.com",
			Status: model.AccountStatusActive, PasswordHash: []byte("hash"),
			CreatedAt: now, UpdatedAt: now,
		})
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		byHandle, err := accounts.GetByHandle(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, a.ID, byHandle.ID)

		byEmail, err := accounts.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, a.ID, byEmail.ID)

		require.NoError(t, accounts.UpdateStatus(ctx, a.ID, model.AccountStatusBlocked))
		blocked, err := accounts.GetByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, model.AccountStatusBlocked, blocked.Status)
	})

	t.Run("report_repository", func(t *testing.T) {
		now := time.Now()
		owner := model.Account{
			ID: uuid.New(), Handle: "bruno", Email: "bruno@example.com",
			Status: model.AccountStatusActive, PasswordHash: []byte("hash"),
			CreatedAt: now, UpdatedAt: now,
		}
		_, err := accounts.Create(ctx, owner)
		require.NoError(t, err)

		first, err := reports.Create(ctx, model.Report{ID: uuid.New(), OwnerID: owner.ID, Body: "primo\n"})
		require.NoError(t, err)
		require.False(t, first.CreatedAt.IsZero())

		second, err := reports.Create(ctx, model.Report{ID: uuid.New(), OwnerID: owner.ID, Body: "secondo\n"})
		require.NoError(t, err)

		listed, err := reports.GetByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, second.ID, listed[0].ID, "newest first")

		updated, err := reports.UpdateBody(ctx, first.ID, "primo rivisto\n")
		require.NoError(t, err)
		require.Equal(t, "primo rivisto\n", updated.Body)

		require.NoError(t, reports.Delete(ctx, second.ID))
		_, err = reports.GetByID(ctx, second.ID)
		require.ErrorIs(t, err, model.ErrNotFound)

		// Deleting the owner cascades to the remaining report.
		require.NoError(t, accounts.Delete(ctx, owner.ID))
		_, err = reports.GetByID(ctx, first.ID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("refresh_token_repository", func(t *testing.T) {
		now := time.Now()
		owner := model.Account{
			ID: uuid.New(), Handle: "carla", Email: "carla@example.com",
			Status: model.AccountStatusActive, PasswordHash: []byte("hash"),
			CreatedAt: now, UpdatedAt: now,
		}
		_, err := accounts.Create(ctx, owner)
		require.NoError(t, err)

		token := model.RefreshToken{
			ID:        uuid.New(),
			JTI:       uuid.NewString(),
			AccountID: owner.ID,
			TokenHash: []byte("hash"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, tokens.Create(ctx, token))

		stored, err := tokens.GetByJTI(ctx, token.JTI)
		require.NoError(t, err)
		require.Nil(t, stored.RevokedAt)

		require.NoError(t, tokens.RevokeByJTI(ctx, token.JTI))
		require.ErrorIs(t, tokens.RevokeByJTI(ctx, token.JTI), model.ErrNotFound)

		revoked, err := tokens.GetByJTI(ctx, token.JTI)
		require.NoError(t, err)
		require.NotNil(t, revoked.RevokedAt)

		require.NoError(t, tokens.RevokeAllByAccount(ctx, owner.ID))
	})
}
