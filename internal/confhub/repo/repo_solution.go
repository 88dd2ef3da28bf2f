package repo

import (
	"context"
	"strings"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/store"
	"github.com/confhub/confhub/pkg/id"
)

type ISolutionRepository interface {
	CreateSolution(ctx context.Context, req model.CreateSolutionReq) (*model.Solution, error)
	GetSolution(ctx context.Context, solutionID string) (*model.Solution, error)
	ListSolutions(ctx context.Context) ([]model.Solution, error)
	UpdateSolution(ctx context.Context, solutionID string, req model.UpdateSolutionReq) (*model.Solution, error)
	DeleteSolution(ctx context.Context, solutionID string) error
	AddParameter(ctx context.Context, solutionID, parameterID string) error
	RemoveParameter(ctx context.Context, solutionID, parameterID string) error
}

type SolutionRepo struct {
	q store.Queryer
}

func NewSolutionRepo(q store.Queryer) ISolutionRepository {
	return &SolutionRepo{q: q}
}

const solutionColumns = "ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT"

func scanSolution(row store.Row) model.Solution {
	return model.Solution{
		ID:          rowString(row, "ID"),
		Name:        rowString(row, "NAME"),
		Description: rowString(row, "DESCRIPTION"),
		CreatedAt:   rowTime(row, "CREATED_AT"),
		UpdatedAt:   rowTime(row, "UPDATED_AT"),
	}
}

func (r *SolutionRepo) CreateSolution(ctx context.Context, req model.CreateSolutionReq) (*model.Solution, error) {
	existing, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM SOLUTIONS WHERE NAME = ?", req.Name)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errs.Conflict("solution name %q already exists", req.Name)
	}

	solutionID := id.GetUUID()
	_, err = r.q.ExecuteNonQuery(ctx,
		"INSERT INTO SOLUTIONS (ID, NAME, DESCRIPTION) VALUES (?, ?, ?)",
		solutionID, req.Name, req.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("solution name %q already exists", req.Name)
		}
		return nil, err
	}

	return r.GetSolution(ctx, solutionID)
}

func (r *SolutionRepo) GetSolution(ctx context.Context, solutionID string) (*model.Solution, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+solutionColumns+" FROM SOLUTIONS WHERE ID = ?", solutionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("solution %q not found", solutionID)
	}

	sol := scanSolution(rows[0])
	return &sol, nil
}

func (r *SolutionRepo) ListSolutions(ctx context.Context) ([]model.Solution, error) {
	rows, err := r.q.ExecuteQuery(ctx,
		"SELECT "+solutionColumns+" FROM SOLUTIONS ORDER BY NAME")
	if err != nil {
		return nil, err
	}

	solutions := make([]model.Solution, 0, len(rows))
	for _, row := range rows {
		solutions = append(solutions, scanSolution(row))
	}
	return solutions, nil
}

func (r *SolutionRepo) UpdateSolution(ctx context.Context, solutionID string, req model.UpdateSolutionReq) (*model.Solution, error) {
	current, err := r.GetSolution(ctx, solutionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != current.Name {
		dup, err := r.q.ExecuteQuery(ctx, "SELECT ID FROM SOLUTIONS WHERE NAME = ?", *req.Name)
		if err != nil {
			return nil, err
		}
		if len(dup) > 0 {
			return nil, errs.Conflict("solution name %q already exists", *req.Name)
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
	if req.Description != nil {
		sets = append(sets, "DESCRIPTION = ?")
		args = append(args, *req.Description)
	}
	if len(sets) == 0 {
		return current, nil
	}

	sets = append(sets, "UPDATED_AT = CURRENT_TIMESTAMP()")
	args = append(args, solutionID)
	_, err = r.q.ExecuteNonQuery(ctx,
		"UPDATE SOLUTIONS SET "+strings.Join(sets, ", ")+" WHERE ID = ?", args...)
	if err != nil {
		return nil, err
	}

	return r.GetSolution(ctx, solutionID)
}

func (r *SolutionRepo) DeleteSolution(ctx context.Context, solutionID string) error {
	if _, err := r.GetSolution(ctx, solutionID); err != nil {
		return err
	}

	// Associations and scoped keys first, the store does not cascade.
	for _, stmt := range []string{
		"DELETE FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID = ?",
		"DELETE FROM SOLUTION_API_KEYS WHERE SOLUTION_ID = ?",
		"DELETE FROM SOLUTIONS WHERE ID = ?",
	} {
		if _, err := r.q.ExecuteNonQuery(ctx, stmt, solutionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *SolutionRepo) AddParameter(ctx context.Context, solutionID, parameterID string) error {
	existing, err := r.q.ExecuteQuery(ctx,
		"SELECT SOLUTION_ID FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID = ? AND PARAMETER_ID = ?",
		solutionID, parameterID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = r.q.ExecuteNonQuery(ctx,
		"INSERT INTO SOLUTION_PARAMETERS (SOLUTION_ID, PARAMETER_ID) VALUES (?, ?)",
		solutionID, parameterID)
	return err
}

func (r *SolutionRepo) RemoveParameter(ctx context.Context, solutionID, parameterID string) error {
	affected, err := r.q.ExecuteNonQuery(ctx,
		"DELETE FROM SOLUTION_PARAMETERS WHERE SOLUTION_ID = ? AND PARAMETER_ID = ?",
		solutionID, parameterID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NotFound("parameter %q is not assigned to solution %q", parameterID, solutionID)
	}
	return nil
}
