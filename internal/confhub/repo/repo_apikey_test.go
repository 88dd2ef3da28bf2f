package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory ICache for exercising the token cache path.
type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeCache) Expire(_ context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func keyRow(id, token string, active bool, expiresAt *time.Time) store.Row {
	row := store.Row{
		"ID": id, "SOLUTION_ID": "s1", "KEY_NAME": "ci",
		"API_KEY": token, "IS_ACTIVE": active,
	}
	if expiresAt != nil {
		row["EXPIRES_AT"] = *expiresAt
	}
	return row
}

func TestCreateAPIKeyReturnsStoredKey(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTION_API_KEYS WHERE ID", rows(keyRow("k1", "sol_abcd1234", true, nil)))

	key, err := NewAPIKeyRepo(q, nil).CreateAPIKey(context.Background(), "s1", "ci", "sol_abcd1234", nil)
	require.NoError(t, err)

	assert.Len(t, q.writesContaining("INSERT INTO SOLUTION_API_KEYS"), 1)
	assert.Equal(t, "k1", key.ID)
	assert.Equal(t, "sol_abcd1234", key.Token)
}

func TestValidateTokenUnknown(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", noRows())

	_, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_nope")
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestValidateTokenInactive(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", false, nil)))

	_, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_abcd")
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestValidateTokenExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", true, &past)))

	_, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_abcd")
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestValidateTokenExpiryBoundary(t *testing.T) {
	now := time.Now()
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", true, &now)))

	// A key expiring exactly now is already expired.
	_, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_abcd")
	assert.Error(t, err)
}

func TestValidateTokenAccepted(t *testing.T) {
	future := time.Now().Add(time.Hour)
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", true, &future)))

	key, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_abcd")
	require.NoError(t, err)
	assert.Equal(t, "s1", key.SolutionID)
}

func TestValidateTokenNoExpiry(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", true, nil)))

	key, err := NewAPIKeyRepo(q, nil).ValidateToken(context.Background(), "sol_abcd")
	require.NoError(t, err)
	assert.Nil(t, key.ExpiresAt)
}

func TestDeleteAPIKeyNotFound(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTION_API_KEYS WHERE ID", noRows())

	err := NewAPIKeyRepo(q, nil).DeleteAPIKey(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestToggleAPIKey(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTION_API_KEYS WHERE ID", rows(keyRow("k1", "sol_abcd", true, nil)))

	require.NoError(t, NewAPIKeyRepo(q, nil).ToggleAPIKey(context.Background(), "k1", false))

	updates := q.writesContaining("UPDATE SOLUTION_API_KEYS SET IS_ACTIVE")
	require.Len(t, updates, 1)
	assert.Equal(t, []any{false, "k1"}, q.writeArgs[len(q.writeArgs)-1])
}

func TestTouchLastUsedSwallowsFailure(t *testing.T) {
	q := &fakeQueryer{}
	q.onExec("SET LAST_USED", func([]any) (int64, error) {
		return 0, assert.AnError
	})

	// Must not panic or surface the error.
	NewAPIKeyRepo(q, nil).TouchLastUsed(context.Background(), "k1")
	assert.Len(t, q.writesContaining("SET LAST_USED"), 1)
}

func TestValidateTokenServedFromCache(t *testing.T) {
	queries := 0
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", func([]any) ([]store.Row, error) {
		queries++
		return []store.Row{keyRow("k1", "sol_abcd", true, nil)}, nil
	})

	r := NewAPIKeyRepo(q, newFakeCache())

	key, err := r.ValidateToken(context.Background(), "sol_abcd")
	require.NoError(t, err)
	assert.Equal(t, 1, queries)

	key, err = r.ValidateToken(context.Background(), "sol_abcd")
	require.NoError(t, err)
	assert.Equal(t, 1, queries, "second validation should not reach the store")
	assert.Equal(t, "s1", key.SolutionID)
}

func TestDeleteAPIKeyInvalidatesCache(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("WHERE API_KEY", rows(keyRow("k1", "sol_abcd", true, nil)))
	q.onQuery("FROM SOLUTION_API_KEYS WHERE ID", rows(keyRow("k1", "sol_abcd", true, nil)))

	c := newFakeCache()
	r := NewAPIKeyRepo(q, c)

	_, err := r.ValidateToken(context.Background(), "sol_abcd")
	require.NoError(t, err)
	assert.Contains(t, c.data, "confhub:apikey:sol_abcd")

	require.NoError(t, r.DeleteAPIKey(context.Background(), "k1"))
	assert.NotContains(t, c.data, "confhub:apikey:sol_abcd")
}

func TestListAPIKeysMasking(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("WHERE SOLUTION_ID", rows(keyRow("k1", "sol_secretvalue9876", true, nil)))

	keys, err := NewAPIKeyRepo(q, nil).ListAPIKeys(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, keys, 1)

	masked := keys[0].Masked()
	assert.Equal(t, "9876", masked.TokenSuffix)
}
