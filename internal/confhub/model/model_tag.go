package model

// Tag labels parameters for search and bulk operations.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateTagReq struct {
	Name string `json:"name" binding:"required"`
}

type UpdateTagReq struct {
	Name *string `json:"name"`
}
