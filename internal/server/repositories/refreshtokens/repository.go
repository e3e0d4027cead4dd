// Package refreshtokens declares the server-side repository contract for
// refresh-token records and its PostgreSQL, Redis and in-memory backends.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/todoauth/internal/server/models"
)

// Repository persists refresh-token records. Records are never deleted;
// only the used and revoked flags change, and only from false to true.
type Repository interface {
	// Create stores t and fills in its ID. A duplicate token string yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error)

	// Find looks a record up by its opaque token string and returns
	// common.ErrorNotFound when there is none.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// MarkUsed atomically flips is_used from false to true. If the record is
	// already used it returns common.ErrTokenAlreadyUsed and changes nothing,
	// so of two concurrent callers exactly one succeeds.
	MarkUsed(ctx context.Context, t *models.RefreshToken) error

	// Revoke sets is_revoked. Revoking twice is not an error; an unknown
	// token yields common.ErrorNotFound.
	Revoke(ctx context.Context, token string) error
}
