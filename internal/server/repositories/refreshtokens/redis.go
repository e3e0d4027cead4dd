package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Expired records stay readable for this long so rotation can report
// them as expired instead of unknown.
const expiredRetention = 24 * time.Hour

const (
	statusMissing     int64 = 0
	statusOK          int64 = 1
	statusAlreadyUsed int64 = 2
	statusRevoked     int64 = 3
)

const createScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1],
  "id", ARGV[1],
  "user_id", ARGV[2],
  "token", ARGV[3],
  "jwt_id", ARGV[4],
  "is_used", ARGV[5],
  "is_revoked", ARGV[6],
  "created_at", ARGV[7],
  "expires_at", ARGV[8])
redis.call("PEXPIREAT", KEYS[1], ARGV[9])
return 1
`

var createLua = redis.NewScript(createScript)

const markUsedScript = `
local state = redis.call("HMGET", KEYS[1], "is_used", "is_revoked")
if not state[1] then
  return 0
end
if state[2] == "1" then
  return 3
end
if state[1] == "1" then
  return 2
end
redis.call("HSET", KEYS[1], "is_used", "1")
return 1
`

var markUsedLua = redis.NewScript(markUsedScript)

const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "is_revoked", "1")
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisRepository keeps each refresh token in a hash under
// "<prefix>:<token>". State transitions run as Lua scripts so the
// compare-and-set on is_used and is_revoked cannot interleave with another
// caller.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "rt"
	}
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) key(token string) string {
	return r.prefix + ":" + token
}

func (r *RedisRepository) seqKey() string {
	return r.prefix + ":seq"
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (r *RedisRepository) Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	id, err := r.redis.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	keepUntil := t.ExpiresAt.Add(expiredRetention).UnixMilli()
	res, err := createLua.Run(ctx, r.redis, []string{r.key(t.Token)},
		id,
		t.UserID,
		t.Token,
		t.JWTID,
		boolFlag(t.IsUsed),
		boolFlag(t.IsRevoked),
		t.CreatedAt.UnixNano(),
		t.ExpiresAt.UnixNano(),
		keepUntil,
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if res == 0 {
		return nil, common.ErrorAlreadyExists
	}

	t.ID = id
	return t, nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	fields, err := r.redis.HGetAll(ctx, r.key(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}
	return decodeHash(fields)
}

func (r *RedisRepository) MarkUsed(ctx context.Context, t *models.RefreshToken) error {
	res, err := markUsedLua.Run(ctx, r.redis, []string{r.key(t.Token)}).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	switch res {
	case statusOK:
		t.IsUsed = true
		return nil
	case statusAlreadyUsed:
		return common.ErrTokenAlreadyUsed
	case statusRevoked:
		t.IsRevoked = true
		return common.ErrTokenRevoked
	case statusMissing:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("redis error: unexpected status %d", res)
	}
}

func (r *RedisRepository) Revoke(ctx context.Context, token string) error {
	res, err := revokeLua.Run(ctx, r.redis, []string{r.key(token)}).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if res == 0 {
		return common.ErrorNotFound
	}
	return nil
}

var errCorruptRecord = errors.New("corrupt refresh token record")

func decodeHash(f map[string]string) (*models.RefreshToken, error) {
	id, err := strconv.ParseInt(f["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", errCorruptRecord, err)
	}
	created, err := strconv.ParseInt(f["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: created_at: %v", errCorruptRecord, err)
	}
	expires, err := strconv.ParseInt(f["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at: %v", errCorruptRecord, err)
	}
	return &models.RefreshToken{
		ID:        id,
		UserID:    f["user_id"],
		Token:     f["token"],
		JWTID:     f["jwt_id"],
		IsUsed:    f["is_used"] == "1",
		IsRevoked: f["is_revoked"] == "1",
		CreatedAt: time.Unix(0, created).UTC(),
		ExpiresAt: time.Unix(0, expires).UTC(),
	}, nil
}
