package model

import "time"

// Solution is a named set of configuration parameters.
type Solution struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type CreateSolutionReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateSolutionReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SolutionDetail carries the solution together with its parameters.
type SolutionDetail struct {
	Solution
	Parameters []Parameter `json:"parameters"`
}
