package repo

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/cache"
	"github.com/confhub/confhub/pkg/id"
	"github.com/confhub/confhub/pkg/log"
)

type IAPIKeyRepository interface {
	CreateAPIKey(ctx context.Context, solutionID, name, token string, expiresAt *time.Time) (*model.APIKey, error)
	ListAPIKeys(ctx context.Context, solutionID string) ([]model.APIKey, error)
	DeleteAPIKey(ctx context.Context, keyID string) error
	ToggleAPIKey(ctx context.Context, keyID string, active bool) error
	ValidateToken(ctx context.Context, token string) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string)
}

type APIKeyRepo struct {
	q     store.Queryer
	cache cache.ICache
}

// NewAPIKeyRepo builds the key registry. cache may be nil, validation
// then always hits the store.
func NewAPIKeyRepo(q store.Queryer, c cache.ICache) IAPIKeyRepository {
	return &APIKeyRepo{q: q, cache: c}
}

const (
	apiKeyColumns  = "ID, SOLUTION_ID, KEY_NAME, API_KEY, IS_ACTIVE, CREATED_AT, LAST_USED, EXPIRES_AT"
	tokenCacheTTL  = time.Minute
	tokenCachePref = "confhub:apikey:"
)

func scanAPIKey(row store.Row) model.APIKey {
	return model.APIKey{
		ID:         rowString(row, "ID"),
		SolutionID: rowString(row, "SOLUTION_ID"),
		Name:       rowString(row, "KEY_NAME"),
		Token:      rowString(row, "API_KEY"),
		IsActive:   rowBool(row, "IS_ACTIVE"),
		CreatedAt:  rowTime(row, "CREATED_AT"),
		LastUsedAt: rowTime(row, "LAST_USED"),
		ExpiresAt:  rowTime(row, "EXPIRES_AT"),
	}
}

func (r *APIKeyRepo) CreateAPIKey(ctx context.Context, solutionID, name, token string, expiresAt *time.Time) (*model.APIKey, error) {
	keyID := id.GetUUID()
	_, err := r.q.ExecuteNonQuery(ctx,
		"INSERT INTO SOLUTION_API_KEYS (ID, SOLUTION_ID, KEY_NAME, API_KEY, EXPIRES_AT) VALUES (?, ?, ?, ?, ?)",
		keyID, solutionID, name, token, expiresAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+apiKeyColumns+" FROM SOLUTION_API_KEYS WHERE ID = ?", keyID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("api key %q not found after insert", keyID)
	}

	key := scanAPIKey(rows[0])
	return &key, nil
}

func (r *APIKeyRepo) ListAPIKeys(ctx context.Context, solutionID string) ([]model.APIKey, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+apiKeyColumns+" FROM SOLUTION_API_KEYS WHERE SOLUTION_ID = ? ORDER BY CREATED_AT DESC",
		solutionID)
	if err != nil {
		return nil, err
	}

	keys := make([]model.APIKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, scanAPIKey(row))
	}
	return keys, nil
}

func (r *APIKeyRepo) DeleteAPIKey(ctx context.Context, keyID string) error {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT API_KEY FROM SOLUTION_API_KEYS WHERE ID = ?", keyID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.NotFound("api key %q not found", keyID)
	}
	r.dropCached(ctx, rowString(rows[0], "API_KEY"))

	_, err = r.q.ExecuteNonQuery(ctx, "DELETE FROM SOLUTION_API_KEYS WHERE ID = ?", keyID)
	return err
}

func (r *APIKeyRepo) ToggleAPIKey(ctx context.Context, keyID string, active bool) error {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT API_KEY FROM SOLUTION_API_KEYS WHERE ID = ?", keyID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.NotFound("api key %q not found", keyID)
	}
	r.dropCached(ctx, rowString(rows[0], "API_KEY"))

	_, err = r.q.ExecuteNonQuery(ctx,
		"UPDATE SOLUTION_API_KEYS SET IS_ACTIVE = ? WHERE ID = ?", active, keyID)
	return err
}

// ValidateToken resolves a bearer token to its key. Inactive and expired
// keys are rejected; a key expiring exactly now is already expired.
// Recently validated tokens are served from the cache.
func (r *APIKeyRepo) ValidateToken(ctx context.Context, token string) (*model.APIKey, error) {
	if cached := r.cachedKey(ctx, token); cached != nil && cached.ValidAt(time.Now()) {
		return cached, nil
	}

	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+apiKeyColumns+" FROM SOLUTION_API_KEYS WHERE API_KEY = ?", token)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.Unauthorized("invalid or expired API key")
	}

	key := scanAPIKey(rows[0])
	if !key.ValidAt(time.Now()) {
		return nil, errs.Unauthorized("invalid or expired API key")
	}

	r.cacheKey(ctx, token, &key)
	return &key, nil
}

// TouchLastUsed records usage. Failures are logged, never surfaced.
func (r *APIKeyRepo) TouchLastUsed(ctx context.Context, keyID string) {
	_, err := r.q.ExecuteNonQuery(ctx,
		"UPDATE SOLUTION_API_KEYS SET LAST_USED = CURRENT_TIMESTAMP() WHERE ID = ?", keyID)
	if err != nil {
		log.Warnw("failed to update api key last-used timestamp", "key", keyID, "error", err)
	}
}

// cachedKey looks up a recently validated token. A nil result means the
// caller must validate against the store.
func (r *APIKeyRepo) cachedKey(ctx context.Context, token string) *model.APIKey {
	if r.cache == nil {
		return nil
	}
	v, err := r.cache.Get(ctx, tokenCachePref+token).Result()
	if err != nil {
		return nil
	}
	var key model.APIKey
	if err := sonic.Unmarshal([]byte(v), &key); err != nil {
		return nil
	}
	return &key
}

func (r *APIKeyRepo) cacheKey(ctx context.Context, token string, key *model.APIKey) {
	if r.cache == nil {
		return
	}
	buf, err := sonic.Marshal(key)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, tokenCachePref+token, string(buf), tokenCacheTTL).Err(); err != nil {
		log.Debugw("api key cache set failed", "error", err)
	}
}

func (r *APIKeyRepo) dropCached(ctx context.Context, token string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, tokenCachePref+token).Err(); err != nil {
		log.Debugw("api key cache del failed", "error", err)
	}
}
