package types

// PageQuery is bound from page/limit query parameters on list endpoints.
type PageQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(q PageQuery, total int64) Pagination {
	totalPages := (total + int64(q.Limit) - 1) / int64(q.Limit)

	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PagedResponse is the data payload of every list endpoint.
type PagedResponse struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
	Stats      any        `json:"stats,omitempty"`
}

type UserResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
