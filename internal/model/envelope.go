package model

// Page is the envelope returned by the listing endpoint.
type Page struct {
	Success    bool  `json:"success"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	Jobs       []Job `json:"jobs"`
}

// TotalPages is ceil(total/limit); zero when there is nothing to page.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

// Status values of the single job response.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusExpired  = "expired"
	StatusError    = "error"
)

// Single is the envelope returned by the single job endpoint.
type Single struct {
	Status string `json:"status"`
	Job    *Job   `json:"job,omitempty"`
}
