package search

import (
	"strings"

	"github.com/confhub/confhub/internal/confhub/model"
)

const selectColumns = "SELECT DISTINCT p.ID, p.NAME, p.KEY, p.VALUE, p.DESCRIPTION, p.IS_SECRET, p.CREATED_AT, p.UPDATED_AT FROM PARAMETERS p"

// Compose turns an optional-predicate filter into a parameterized query.
// All predicates are AND-combined; tag names OR-combine within their set.
// User input only ever lands in the argument list, never in the SQL text.
func Compose(filter model.ParameterFilter) (string, []any) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)

	sb.WriteString(selectColumns)

	if len(filter.Tags) > 0 {
		sb.WriteString(" JOIN PARAMETER_TAGS pt ON p.ID = pt.PARAMETER_ID")
		sb.WriteString(" JOIN TAGS t ON pt.TAG_ID = t.ID")

		placeholders := make([]string, len(filter.Tags))
		for i, tag := range filter.Tags {
			placeholders[i] = "t.NAME = ?"
			args = append(args, tag)
		}
		conds = append(conds, "("+strings.Join(placeholders, " OR ")+")")
	}

	if filter.SolutionID != "" {
		conds = append(conds, "p.ID IN (SELECT PARAMETER_ID FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID = ?)")
		args = append(args, filter.SolutionID)
	}

	if filter.KeyPattern != "" {
		conds = append(conds, "p.KEY ILIKE ?")
		args = append(args, "%"+filter.KeyPattern+"%")
	}

	if filter.IsSecret != nil {
		conds = append(conds, "p.IS_SECRET = ?")
		args = append(args, *filter.IsSecret)
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY p.KEY")
	return sb.String(), args
}
