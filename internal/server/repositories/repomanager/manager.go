package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so the same code path
// works against a pool or an open transaction. Backends that are not SQL
// ignore the handle.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
