package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParameterRepo(q *fakeQueryer) IParameterRepository {
	return NewParameterRepo(q, NewTagRepo(q))
}

func paramRow(id, key, value string, secret bool) store.Row {
	return store.Row{
		"ID": id, "NAME": "", "KEY": key, "VALUE": value,
		"DESCRIPTION": "", "IS_SECRET": secret,
	}
}

func TestCreateParameterRejectsDuplicateKey(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE KEY", rows(store.Row{"ID": "existing"}))

	_, err := newParameterRepo(q).CreateParameter(context.Background(), model.CreateParameterReq{Key: "app_name", Value: "x"})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.Empty(t, q.writes)
}

func TestCreateParameterAssociatesTagsByName(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE KEY", noRows())
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("FROM TAGS WHERE NAME", noRows())
	q.onQuery("JOIN PARAMETER_TAGS", rows(store.Row{"ID": "t1", "NAME": "prod"}))

	param, err := newParameterRepo(q).CreateParameter(context.Background(), model.CreateParameterReq{
		Key: "app_name", Value: "x", Tags: []string{"prod"},
	})
	require.NoError(t, err)

	assert.Len(t, q.writesContaining("INSERT INTO PARAMETERS"), 1)
	assert.Len(t, q.writesContaining("INSERT INTO TAGS"), 1)
	assert.Len(t, q.writesContaining("INSERT INTO PARAMETER_TAGS"), 1)
	require.Len(t, param.Tags, 1)
	assert.Equal(t, "prod", param.Tags[0].Name)
}

func TestCreateParameterReusesExistingTag(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE KEY", noRows())
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t1"}))
	q.onQuery("JOIN PARAMETER_TAGS", rows(store.Row{"ID": "t1", "NAME": "prod"}))

	_, err := newParameterRepo(q).CreateParameter(context.Background(), model.CreateParameterReq{
		Key: "app_name", Value: "x", Tags: []string{"prod"},
	})
	require.NoError(t, err)

	assert.Empty(t, q.writesContaining("INSERT INTO TAGS"))
	assert.Len(t, q.writesContaining("INSERT INTO PARAMETER_TAGS"), 1)
}

func TestCreateParameterToleratesDuplicateAssociation(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE KEY", noRows())
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t1"}))
	q.onQuery("JOIN PARAMETER_TAGS", rows(store.Row{"ID": "t1", "NAME": "prod"}))
	q.onExec("INSERT INTO PARAMETER_TAGS", func([]any) (int64, error) {
		return 0, errors.New("unique constraint violated")
	})

	_, err := newParameterRepo(q).CreateParameter(context.Background(), model.CreateParameterReq{
		Key: "app_name", Value: "x", Tags: []string{"prod"},
	})
	assert.NoError(t, err)
}

func TestGetParameterNotFound(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", noRows())

	_, err := newParameterRepo(q).GetParameter(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdateParameterPartialFields(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("JOIN PARAMETER_TAGS", noRows())

	value := "y"
	_, err := newParameterRepo(q).UpdateParameter(context.Background(), "p1", model.UpdateParameterReq{Value: &value})
	require.NoError(t, err)

	updates := q.writesContaining("UPDATE PARAMETERS SET")
	require.Len(t, updates, 1)
	assert.Contains(t, updates[0], "VALUE = ?")
	assert.NotContains(t, updates[0], "KEY = ?")
	assert.NotContains(t, updates[0], "IS_SECRET = ?")
	assert.Contains(t, updates[0], "UPDATED_AT = CURRENT_TIMESTAMP()")
}

func TestUpdateParameterReplacesTagList(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t2"}))
	q.onQuery("JOIN PARAMETER_TAGS", rows(store.Row{"ID": "t2", "NAME": "staging"}))

	tags := []string{"staging"}
	_, err := newParameterRepo(q).UpdateParameter(context.Background(), "p1", model.UpdateParameterReq{Tags: &tags})
	require.NoError(t, err)

	assert.Len(t, q.writesContaining("DELETE FROM PARAMETER_TAGS WHERE PARAMETER_ID"), 1)
	assert.Len(t, q.writesContaining("INSERT INTO PARAMETER_TAGS"), 1)
	// No field update statement when only tags change.
	assert.Empty(t, q.writesContaining("UPDATE PARAMETERS SET"))
}

func TestUpdateParameterKeyConflict(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", rows(paramRow("p1", "app_name", "x", false)))
	q.onQuery("JOIN PARAMETER_TAGS", noRows())
	q.onQuery("FROM PARAMETERS WHERE KEY", rows(store.Row{"ID": "other"}))

	key := "taken"
	_, err := newParameterRepo(q).UpdateParameter(context.Background(), "p1", model.UpdateParameterReq{Key: &key})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestDeleteParameterNotFound(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", noRows())

	err := newParameterRepo(q).DeleteParameter(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, q.writes)
}

func TestDeleteParameterRemovesAssociationsFirst(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", rows(store.Row{"ID": "p1"}))

	require.NoError(t, newParameterRepo(q).DeleteParameter(context.Background(), "p1"))

	require.Len(t, q.writes, 3)
	assert.Contains(t, q.writes[0], "DELETE FROM PARAMETER_TAGS")
	assert.Contains(t, q.writes[1], "DELETE FROM SOLUTION_PARAMETERS")
	assert.Contains(t, q.writes[2], "DELETE FROM PARAMETERS")
}

func TestSearchHydratesTags(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("SELECT DISTINCT", rows(paramRow("p1", "db_host", "localhost", false)))
	q.onQuery("JOIN PARAMETER_TAGS", rows(store.Row{"ID": "t1", "NAME": "Database"}))

	params, err := newParameterRepo(q).Search(context.Background(), model.ParameterFilter{KeyPattern: "db"})
	require.NoError(t, err)
	require.Len(t, params, 1)
	require.Len(t, params[0].Tags, 1)
	assert.Equal(t, "Database", params[0].Tags[0].Name)
}

func TestBulkUnknownOperation(t *testing.T) {
	q := &fakeQueryer{}

	_, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1"}, Operation: "rename",
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalid(err))
}

func TestBulkTagRequiresTags(t *testing.T) {
	q := &fakeQueryer{}

	_, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1"}, Operation: model.BulkOpTag,
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalid(err))
}

func TestBulkDeleteIsBestEffort(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", func(args []any) ([]store.Row, error) {
		if args[0] == "missing" {
			return nil, nil
		}
		return []store.Row{{"ID": args[0]}}, nil
	})

	result, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1", "missing", "p2"}, Operation: model.BulkOpDelete,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Items, 3)
	assert.False(t, result.Items[1].Ok)
	assert.NotEmpty(t, result.Items[1].Error)
}

func TestBulkTagIsIdempotent(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", func(args []any) ([]store.Row, error) {
		return []store.Row{{"ID": args[0]}}, nil
	})
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t1"}))
	q.onExec("INSERT INTO PARAMETER_TAGS", func([]any) (int64, error) {
		return 0, errors.New("unique constraint violated")
	})

	result, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1", "p2", "p3"}, Operation: model.BulkOpTag, Tags: []string{"prod"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
}

func TestBulkTagReportsStoreFailures(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", func(args []any) ([]store.Row, error) {
		return []store.Row{{"ID": args[0]}}, nil
	})
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t1"}))
	q.onExec("INSERT INTO PARAMETER_TAGS", func([]any) (int64, error) {
		return 0, errors.New("store unavailable")
	})

	// A failed association write is not a duplicate, it must be reported.
	result, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1", "p2"}, Operation: model.BulkOpTag, Tags: []string{"prod"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Items, 2)
	assert.False(t, result.Items[0].Ok)
	assert.Contains(t, result.Items[0].Error, "store unavailable")
}

func TestBulkTagReportsUnknownParameter(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM PARAMETERS WHERE ID", func(args []any) ([]store.Row, error) {
		if args[0] == "missing" {
			return nil, nil
		}
		return []store.Row{{"ID": args[0]}}, nil
	})
	q.onQuery("FROM TAGS WHERE NAME", rows(store.Row{"ID": "t1"}))

	result, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1", "missing", "p2"}, Operation: model.BulkOpTag, Tags: []string{"prod"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Items[1].Ok)
	// No association row may be written for the missing parameter.
	assert.Len(t, q.writesContaining("INSERT INTO PARAMETER_TAGS"), 2)
}

func TestBulkUntagSkipsUnknownTag(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM TAGS WHERE NAME", noRows())

	result, err := newParameterRepo(q).Bulk(context.Background(), model.BulkParameterReq{
		ParameterIds: []string{"p1"}, Operation: model.BulkOpUntag, Tags: []string{"ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Empty(t, q.writesContaining("DELETE FROM PARAMETER_TAGS"))
}

func TestGetUnassignedParameters(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("NOT IN (SELECT PARAMETER_ID FROM SOLUTION_PARAMETERS)", rows(paramRow("p9", "orphan", "v", false)))
	q.onQuery("JOIN PARAMETER_TAGS", noRows())

	params, err := newParameterRepo(q).GetUnassignedParameters(context.Background())
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "orphan", params[0].Key)
	assert.Empty(t, params[0].Tags)
}
