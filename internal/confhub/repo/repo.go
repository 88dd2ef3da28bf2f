package repo

import (
	"strings"
	"time"

	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/cache"
)

// Repositories bundles the data access layer for wiring.
type Repositories struct {
	Solution  ISolutionRepository
	Parameter IParameterRepository
	Tag       ITagRepository
	APIKey    IAPIKeyRepository
}

func NewRepositories(q store.Queryer, c cache.ICache) *Repositories {
	tag := NewTagRepo(q)
	return &Repositories{
		Solution:  NewSolutionRepo(q),
		Parameter: NewParameterRepo(q, tag),
		Tag:       tag,
		APIKey:    NewAPIKeyRepo(q, c),
	}
}

// isUniqueViolation reports whether a write failed on a uniqueness
// constraint rather than some other store error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Row value coercion. The warehouse driver hands back loosely typed
// values; fakes in tests hand back native Go types.

func rowString(row store.Row, col string) string {
	switch v := row[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowBool(row store.Row, col string) bool {
	switch v := row[col].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "TRUE" || v == "1"
	case int64:
		return v != 0
	default:
		return false
	}
}

func rowTime(row store.Row, col string) *time.Time {
	switch v := row[col].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
		return nil
	default:
		return nil
	}
}
