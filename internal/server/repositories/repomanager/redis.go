package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/users"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager keeps refresh tokens in Redis and delegates users
// and migrations to base.
type RedisRepositoryManager struct {
	base          RepositoryManager
	refreshTokens *refreshtokens.RedisRepository
}

func NewRedisRepositoryManager(base RepositoryManager, client redis.UniversalClient) *RedisRepositoryManager {
	return &RedisRepositoryManager{
		base:          base,
		refreshTokens: refreshtokens.NewRedisRepository(client, "rt"),
	}
}

func (m *RedisRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return m.base.RunMigrations(ctx, db)
}

func (m *RedisRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.base.Users(db)
}

func (m *RedisRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
