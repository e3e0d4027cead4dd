package refreshtokens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	mk := func(token string) *models.RefreshToken {
		return &models.RefreshToken{
			UserID:    "u1",
			Token:     token,
			JWTID:     "jti-" + token,
			CreatedAt: now,
			ExpiresAt: now.AddDate(0, 6, 0),
		}
	}

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "jti-A1", got.JWTID)
		assert.False(t, got.IsUsed)
		assert.False(t, got.IsRevoked)
		assert.True(t, got.CreatedAt.Equal(now))
		assert.True(t, got.ExpiresAt.Equal(now.AddDate(0, 6, 0)))
	})

	t.Run("ids are distinct", func(t *testing.T) {
		repo := newRepo(t)
		a, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)
		b, err := repo.Create(ctx, mk("B1"))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("duplicate token", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, mk("A1"))
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})

	t.Run("find unknown", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Find(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("mark used once", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		rec, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		require.NoError(t, repo.MarkUsed(ctx, rec))
		assert.True(t, rec.IsUsed)

		again, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		assert.True(t, again.IsUsed)
		assert.ErrorIs(t, repo.MarkUsed(ctx, again), common.ErrTokenAlreadyUsed)
	})

	t.Run("stale copy cannot mark twice", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		first, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		second, err := repo.Find(ctx, "A1")
		require.NoError(t, err)

		require.NoError(t, repo.MarkUsed(ctx, first))
		assert.ErrorIs(t, repo.MarkUsed(ctx, second), common.ErrTokenAlreadyUsed)
	})

	t.Run("concurrent mark used", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		const workers = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec, err := repo.Find(ctx, "A1")
				if err != nil {
					return
				}
				err = repo.MarkUsed(ctx, rec)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				if !errors.Is(err, common.ErrTokenAlreadyUsed) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("mark used on revoked record", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		snapshot, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		require.NoError(t, repo.Revoke(ctx, "A1"))

		err = repo.MarkUsed(ctx, snapshot)
		assert.ErrorIs(t, err, common.ErrTokenRevoked)
		assert.True(t, snapshot.IsRevoked)
		assert.False(t, snapshot.IsUsed)

		got, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		assert.True(t, got.IsRevoked)
		assert.False(t, got.IsUsed)
	})

	t.Run("concurrent revoke and mark used", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		const workers = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Revoke(ctx, "A1"); err != nil {
				t.Errorf("revoke: %v", err)
			}
		}()
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec, err := repo.Find(ctx, "A1")
				if err != nil {
					return
				}
				err = repo.MarkUsed(ctx, rec)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				if !errors.Is(err, common.ErrTokenAlreadyUsed) && !errors.Is(err, common.ErrTokenRevoked) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.LessOrEqual(t, wins, 1)

		got, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		assert.True(t, got.IsRevoked)
		assert.Equal(t, wins == 1, got.IsUsed)
	})

	t.Run("revoke", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, mk("A1"))
		require.NoError(t, err)

		require.NoError(t, repo.Revoke(ctx, "A1"))
		require.NoError(t, repo.Revoke(ctx, "A1"))

		got, err := repo.Find(ctx, "A1")
		require.NoError(t, err)
		assert.True(t, got.IsRevoked)
		assert.False(t, got.IsUsed)

		assert.ErrorIs(t, repo.Revoke(ctx, "nope"), common.ErrorNotFound)
	})

	t.Run("expired record stays readable", func(t *testing.T) {
		repo := newRepo(t)
		old := mk("OLD")
		old.CreatedAt = now.Add(-2 * time.Hour)
		old.ExpiresAt = now.Add(-time.Hour)
		_, err := repo.Create(ctx, old)
		require.NoError(t, err)

		got, err := repo.Find(ctx, "OLD")
		require.NoError(t, err)
		assert.True(t, got.Expired(now))
	})
}
