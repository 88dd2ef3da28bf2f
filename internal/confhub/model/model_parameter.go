package model

import "time"

// Parameter is a single key/value configuration entry.
// Values are stored and transported as strings regardless of shape.
type Parameter struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Description string     `json:"description"`
	IsSecret    bool       `json:"isSecret"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type CreateParameterReq struct {
	Name        string   `json:"name"`
	Key         string   `json:"key" binding:"required"`
	Value       string   `json:"value"`
	Description string   `json:"description"`
	IsSecret    bool     `json:"isSecret"`
	Tags        []string `json:"tags"`
}

// UpdateParameterReq applies only the fields that are set. A non-nil
// Tags list fully replaces the prior associations.
type UpdateParameterReq struct {
	Name        *string   `json:"name"`
	Key         *string   `json:"key"`
	Value       *string   `json:"value"`
	Description *string   `json:"description"`
	IsSecret    *bool     `json:"isSecret"`
	Tags        *[]string `json:"tags"`
}

// ParameterFilter narrows a parameter search. Zero-valued fields do not
// constrain the result. Tags are matched by name, OR-combined.
type ParameterFilter struct {
	SolutionID string   `json:"solutionId"`
	Tags       []string `json:"tags"`
	KeyPattern string   `json:"keyPattern"`
	IsSecret   *bool    `json:"isSecret"`
}

// Bulk operation names.
const (
	BulkOpDelete = "delete"
	BulkOpTag    = "tag"
	BulkOpUntag  = "untag"
)

// BulkParameterReq applies one operation to an explicit id list.
type BulkParameterReq struct {
	ParameterIds []string `json:"parameterIds" binding:"required"`
	Operation    string   `json:"operation" binding:"required"`
	Tags         []string `json:"tags"`
}

// BulkItemResult reports the outcome for one parameter of a bulk operation.
type BulkItemResult struct {
	ParameterID string `json:"parameterId"`
	Ok          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}
