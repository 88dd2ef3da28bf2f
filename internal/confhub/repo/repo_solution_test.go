package repo

import (
	"context"
	"testing"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solutionRow(id, name string) store.Row {
	return store.Row{"ID": id, "NAME": name, "DESCRIPTION": ""}
}

func TestCreateSolutionRejectsDuplicateName(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTIONS WHERE NAME", rows(solutionRow("s1", "Default Solution")))

	_, err := NewSolutionRepo(q).CreateSolution(context.Background(), model.CreateSolutionReq{Name: "Default Solution"})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.Empty(t, q.writes)
}

func TestDeleteSolutionRemovesDependentsFirst(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTIONS WHERE ID", rows(solutionRow("s1", "Default Solution")))

	require.NoError(t, NewSolutionRepo(q).DeleteSolution(context.Background(), "s1"))

	require.Len(t, q.writes, 3)
	assert.Contains(t, q.writes[0], "DELETE FROM SOLUTION_PARAMETERS")
	assert.Contains(t, q.writes[1], "DELETE FROM SOLUTION_API_KEYS")
	assert.Contains(t, q.writes[2], "DELETE FROM SOLUTIONS")
}

func TestAddParameterIsIdempotent(t *testing.T) {
	q := &fakeQueryer{}
	q.onQuery("FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID", rows(store.Row{"SOLUTION_ID": "s1"}))

	require.NoError(t, NewSolutionRepo(q).AddParameter(context.Background(), "s1", "p1"))
	assert.Empty(t, q.writesContaining("INSERT INTO SOLUTION_PARAMETERS"))
}

func TestRemoveParameter(t *testing.T) {
	q := &fakeQueryer{}

	require.NoError(t, NewSolutionRepo(q).RemoveParameter(context.Background(), "s1", "p1"))
	assert.Len(t, q.writesContaining("DELETE FROM SOLUTION_PARAMETERS"), 1)
}

func TestRemoveParameterNotAssigned(t *testing.T) {
	q := &fakeQueryer{}
	q.onExec("DELETE FROM SOLUTION_PARAMETERS", func([]any) (int64, error) {
		return 0, nil
	})

	// A delete that touches no row means the association never existed.
	err := NewSolutionRepo(q).RemoveParameter(context.Background(), "s1", "p1")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
