package repo

import (
	"context"
	"strings"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/search"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/id"
	"github.com/confhub/confhub/pkg/log"
)

type IParameterRepository interface {
	CreateParameter(ctx context.Context, req model.CreateParameterReq) (*model.Parameter, error)
	GetParameter(ctx context.Context, parameterID string) (*model.Parameter, error)
	ListParameters(ctx context.Context) ([]model.Parameter, error)
	UpdateParameter(ctx context.Context, parameterID string, req model.UpdateParameterReq) (*model.Parameter, error)
	DeleteParameter(ctx context.Context, parameterID string) error
	Search(ctx context.Context, filter model.ParameterFilter) ([]model.Parameter, error)
	Bulk(ctx context.Context, req model.BulkParameterReq) (*model.BulkResult, error)
	GetUnassignedParameters(ctx context.Context) ([]model.Parameter, error)
	ParametersForSolution(ctx context.Context, solutionID string) ([]model.Parameter, error)
}

type ParameterRepo struct {
	q   store.Queryer
	tag ITagRepository
}

func NewParameterRepo(q store.Queryer, tag ITagRepository) IParameterRepository {
	return &ParameterRepo{q: q, tag: tag}
}

const parameterColumns = "ID, NAME, KEY, VALUE, DESCRIPTION, IS_SECRET, CREATED_AT, UPDATED_AT"

func (r *ParameterRepo) scanParameter(row store.Row) model.Parameter {
	return model.Parameter{
		ID:          rowString(row, "ID"),
		Name:        rowString(row, "NAME"),
		Key:         rowString(row, "KEY"),
		Value:       rowString(row, "VALUE"),
		Description: rowString(row, "DESCRIPTION"),
		IsSecret:    rowBool(row, "IS_SECRET"),
		CreatedAt:   rowTime(row, "CREATED_AT"),
		UpdatedAt:   rowTime(row, "UPDATED_AT"),
	}
}

func (r *ParameterRepo) hydrate(ctx context.Context, rows []store.Row) ([]model.Parameter, error) {
	params := make([]model.Parameter, 0, len(rows))
	for _, row := range rows {
		p := r.scanParameter(row)
		tags, err := r.tag.TagsForParameter(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Tags = tags
		params = append(params, p)
	}
	return params, nil
}

// CreateParameter inserts a parameter and its tag associations. The key
// uniqueness pre-check surfaces a conflict before the store would.
func (r *ParameterRepo) CreateParameter(ctx context.Context, req model.CreateParameterReq) (*model.Parameter, error) {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM PARAMETERS WHERE KEY = ?", req.Key)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errs.Conflict("parameter key %q already exists", req.Key)
	}

	paramID := id.GetUUID()
	_, err = r.q.ExecuteNonQuery(ctx,
		"INSERT INTO PARAMETERS (ID, NAME, KEY, VALUE, DESCRIPTION, IS_SECRET) VALUES (?, ?, ?, ?, ?, ?)",
		paramID, req.Name, req.Key, req.Value, req.Description, req.IsSecret)
	if err != nil {
		return nil, err
	}

	if err := r.associateTags(ctx, paramID, req.Tags); err != nil {
		return nil, err
	}

	return r.GetParameter(ctx, paramID)
}

// associateTags links a parameter to tags by name, creating tags on
// first use. An already-present association is not an error; any other
// store failure surfaces to the caller.
func (r *ParameterRepo) associateTags(ctx context.Context, parameterID string, tagNames []string) error {
	for _, name := range tagNames {
		tagID, err := r.tag.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}

		existing, err := r.q.ExecuteQuery(ctx,
			"SELECT PARAMETER_ID FROM PARAMETER_TAGS WHERE PARAMETER_ID = ? AND TAG_ID = ?",
			parameterID, tagID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		if _, err := r.q.ExecuteNonQuery(ctx,
			"INSERT INTO PARAMETER_TAGS (PARAMETER_ID, TAG_ID) VALUES (?, ?)",
			parameterID, tagID); err != nil {
			// A losing race against a concurrent association is fine.
			if isUniqueViolation(err) {
				log.Debugw("tag association already present", "parameter", parameterID, "tag", name)
				continue
			}
			return err
		}
	}
	return nil
}

func (r *ParameterRepo) GetParameter(ctx context.Context, parameterID string) (*model.Parameter, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+parameterColumns+" FROM PARAMETERS WHERE ID = ?", parameterID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("parameter %q not found", parameterID)
	}

	params, err := r.hydrate(ctx, rows[:1])
	if err != nil {
		return nil, err
	}
	return &params[0], nil
}

func (r *ParameterRepo) ListParameters(ctx context.Context) ([]model.Parameter, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+parameterColumns+" FROM PARAMETERS ORDER BY KEY")
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// UpdateParameter applies only the provided fields. A provided tag list
// replaces all prior associations.
func (r *ParameterRepo) UpdateParameter(ctx context.Context, parameterID string, req model.UpdateParameterReq) (*model.Parameter, error) {
	current, err := r.GetParameter(ctx, parameterID)
	if err != nil {
		return nil, err
	}

	if req.Key != nil && *req.Key != current.Key {
		dup, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM PARAMETERS WHERE KEY = ?", *req.Key)
		if err != nil {
			return nil, err
		}
		if len(dup) > 0 {
			return nil, errs.Conflict("parameter key %q already exists", *req.Key)
		}
	}

	var (
		sets []string
		args []any
	)
	if req.Name != nil {
		sets = append(sets, "NAME = ?")
		args = append(args, *req.Name)
	}
	if req.Key != nil {
		sets = append(sets, "KEY = ?")
		args = append(args, *req.Key)
	}
	if req.Value != nil {
		sets = append(sets, "VALUE = ?")
		args = append(args, *req.Value)
	}
	if req.Description != nil {
		sets = append(sets, "DESCRIPTION = ?")
		args = append(args, *req.Description)
	}
	if req.IsSecret != nil {
		sets = append(sets, "IS_SECRET = ?")
		args = append(args, *req.IsSecret)
	}

	if len(sets) > 0 {
		sets = append(sets, "UPDATED_AT = CURRENT_TIMESTAMP()")
		query := "UPDATE PARAMETERS SET " + strings.Join(sets, ", ") + " WHERE ID = ?"
		args = append(args, parameterID)
		if _, err := r.q.ExecuteNonQuery(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	if req.Tags != nil {
		if _, err := r.q.ExecuteNonQuery(ctx,
			"DELETE FROM PARAMETER_TAGS WHERE PARAMETER_ID = ?", parameterID); err != nil {
			return nil, err
		}
		if err := r.associateTags(ctx, parameterID, *req.Tags); err != nil {
			return nil, err
		}
	}

	return r.GetParameter(ctx, parameterID)
}

func (r *ParameterRepo) DeleteParameter(ctx context.Context, parameterID string) error {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM PARAMETERS WHERE ID = ?", parameterID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return errs.NotFound("parameter %q not found", parameterID)
	}

	if _, err := r.q.ExecuteNonQuery(ctx, "DELETE FROM PARAMETER_TAGS WHERE PARAMETER_ID = ?", parameterID); err != nil {
		return err
	}
	if _, err := r.q.ExecuteNonQuery(ctx, "DELETE FROM SOLUTION_PARAMETERS WHERE PARAMETER_ID = ?", parameterID); err != nil {
		return err
	}
	_, err = r.q.ExecuteNonQuery(ctx, "DELETE FROM PARAMETERS WHERE ID = ?", parameterID)
	return err
}

func (r *ParameterRepo) Search(ctx context.Context, filter model.ParameterFilter) ([]model.Parameter, error) {
	query, args := search.Compose(filter)
	rows, err := r.q.ExecuteQuery(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// Bulk applies one operation across an id list. Failures are collected
// per item rather than aborting the batch.
func (r *ParameterRepo) Bulk(ctx context.Context, req model.BulkParameterReq) (*model.BulkResult, error) {
	switch req.Operation {
	case model.BulkOpDelete:
		return r.bulkDelete(ctx, req.ParameterIds), nil
	case model.BulkOpTag, model.BulkOpUntag:
		if len(req.Tags) == 0 {
			return nil, errs.Invalid("tags are required for the %s operation", req.Operation)
		}
		if req.Operation == model.BulkOpTag {
			return r.bulkTag(ctx, req.ParameterIds, req.Tags), nil
		}
		return r.bulkUntag(ctx, req.ParameterIds, req.Tags), nil
	default:
		return nil, errs.Invalid("unknown bulk operation %q", req.Operation)
	}
}

func (r *ParameterRepo) bulkDelete(ctx context.Context, ids []string) *model.BulkResult {
	result := &model.BulkResult{}
	for _, paramID := range ids {
		if err := r.DeleteParameter(ctx, paramID); err != nil {
			result.Failed++
			result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Error: err.Error()})
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Ok: true})
	}
	return result
}

// tagOne associates tags with a single parameter after confirming the
// parameter exists. The store does not enforce the foreign key.
func (r *ParameterRepo) tagOne(ctx context.Context, paramID string, tagNames []string) error {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM PARAMETERS WHERE ID = ?", paramID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return errs.NotFound("parameter %q not found", paramID)
	}
	return r.associateTags(ctx, paramID, tagNames)
}

func (r *ParameterRepo) bulkTag(ctx context.Context, ids, tagNames []string) *model.BulkResult {
	result := &model.BulkResult{}
	for _, paramID := range ids {
		if err := r.tagOne(ctx, paramID, tagNames); err != nil {
			result.Failed++
			result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Error: err.Error()})
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Ok: true})
	}
	return result
}

func (r *ParameterRepo) bulkUntag(ctx context.Context, ids, tagNames []string) *model.BulkResult {
	result := &model.BulkResult{}
	for _, paramID := range ids {
		var failed error
		for _, name := range tagNames {
			rows, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM TAGS WHERE NAME = ?", name)
			if err != nil {
				failed = err
				break
			}
			if len(rows) == 0 {
				continue
			}
			tagID := rowString(rows[0], "ID")
			if _, err := r.q.ExecuteNonQuery(ctx,
				"DELETE FROM PARAMETER_TAGS WHERE PARAMETER_ID = ? AND TAG_ID = ?", paramID, tagID); err != nil {
				failed = err
				break
			}
		}
		if failed != nil {
			result.Failed++
			result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Error: failed.Error()})
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, model.BulkItemResult{ParameterID: paramID, Ok: true})
	}
	return result
}

func (r *ParameterRepo) GetUnassignedParameters(ctx context.Context) ([]model.Parameter, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+parameterColumns+" FROM PARAMETERS WHERE ID NOT IN (SELECT PARAMETER_ID FROM SOLUTION_PARAMETERS) ORDER BY KEY")
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

func (r *ParameterRepo) ParametersForSolution(ctx context.Context, solutionID string) ([]model.Parameter, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+parameterColumns+" FROM PARAMETERS WHERE ID IN (SELECT PARAMETER_ID FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID = ?) ORDER BY KEY",
		solutionID)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}
