package repo

import (
	"context"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/id"
)

type ITagRepository interface {
	CreateTag(ctx context.Context, req model.CreateTagReq) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	DeleteTag(ctx context.Context, tagID string) error
	GetOrCreate(ctx context.Context, name string) (string, error)
	TagsForParameter(ctx context.Context, parameterID string) ([]model.Tag, error)
}

type TagRepo struct {
	q store.Queryer
}

func NewTagRepo(q store.Queryer) ITagRepository {
	return &TagRepo{q: q}
}

func (r *TagRepo) CreateTag(ctx context.Context, req model.CreateTagReq) (*model.Tag, error) {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM TAGS WHERE NAME = ?", req.Name)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errs.Conflict("tag name %q already exists", req.Name)
	}

	tagID := id.GetUUID()
	_, err = r.q.ExecuteNonQuery(ctx, "INSERT INTO TAGS (ID, NAME) VALUES (?, ?)", tagID, req.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("tag name %q already exists", req.Name)
		}
		return nil, err
	}

	return &model.Tag{ID: tagID, Name: req.Name}, nil
}

func (r *TagRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.q.ExecuteQuery(ctx, "SELECT ID, NAME FROM TAGS ORDER BY NAME")
	if err != nil {
		return nil, err
	}

	tags := make([]model.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, model.Tag{ID: rowString(row, "ID"), Name: rowString(row, "NAME")})
	}
	return tags, nil
}

func (r *TagRepo) DeleteTag(ctx context.Context, tagID string) error {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM TAGS WHERE ID = ?", tagID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return errs.NotFound("tag %q not found", tagID)
	}

	// Association rows go first, the store does not cascade for us.
	if _, err := r.q.ExecuteNonQuery(ctx, "DELETE FROM PARAMETER_TAGS WHERE TAG_ID = ?", tagID); err != nil {
		return err
	}
	_, err = r.q.ExecuteNonQuery(ctx, "DELETE FROM TAGS WHERE ID = ?", tagID)
	return err
}

// GetOrCreate resolves a tag id by name, creating the tag on first use.
// A losing race against a concurrent create falls back to the winner's row.
func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (string, error) {
	rows, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM TAGS WHERE NAME = ?", name)
	if err != nil {
		return "", err
	}
	if len(rows) > 0 {
		return rowString(rows[0], "ID"), nil
	}

	tagID := id.GetUUID()
	if _, err := r.q.ExecuteNonQuery(ctx, "INSERT INTO TAGS (ID, NAME) VALUES (?, ?)", tagID, name); err != nil {
		rows, qErr := r.q.ExecuteQuery(ctx, "SELECT ID FROM TAGS WHERE NAME = ?", name)
		if qErr == nil && len(rows) > 0 {
			return rowString(rows[0], "ID"), nil
		}
		return "", err
	}
	return tagID, nil
}

func (r *TagRepo) TagsForParameter(ctx context.Context, parameterID string) ([]model.Tag, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		`SELECT t.ID, t.NAME FROM TAGS t
		 JOIN PARAMETER_TAGS pt ON t.ID = pt.TAG_ID
		 WHERE pt.PARAMETER_ID = ? ORDER BY t.NAME`, parameterID)
	if err != nil {
		return nil, err
	}

	tags := make([]model.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, model.Tag{ID: rowString(row, "ID"), Name: rowString(row, "NAME")})
	}
	return tags, nil
}
