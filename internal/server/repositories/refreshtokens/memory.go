package refreshtokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
)

// MemoryRepository is a process-local Repository. Records are copied on
// the way in and out so callers never share state with the map.
type MemoryRepository struct {
	mu     sync.Mutex
	seq    int64
	tokens map[string]*models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (r *MemoryRepository) Create(_ context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[t.Token]; ok {
		return nil, common.ErrorAlreadyExists
	}
	r.seq++
	t.ID = r.seq
	stored := *t
	r.tokens[t.Token] = &stored
	return t, nil
}

func (r *MemoryRepository) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r *MemoryRepository) MarkUsed(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[t.Token]
	if !ok {
		return common.ErrorNotFound
	}
	if stored.IsRevoked {
		t.IsRevoked = true
		return common.ErrTokenRevoked
	}
	if stored.IsUsed {
		return common.ErrTokenAlreadyUsed
	}
	stored.IsUsed = true
	t.IsUsed = true
	return nil
}

func (r *MemoryRepository) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[token]
	if !ok {
		return common.ErrorNotFound
	}
	stored.IsRevoked = true
	return nil
}
