package dto

// RunReplanRequest optionally overrides the configured lookahead horizon
// for one run. The trigger requires no body.
type RunReplanRequest struct {
	HorizonDays int `json:"horizonDays" validate:"omitempty,min=1,max=30"`
}

// RunReplanResponse summarises one replan execution.
type RunReplanResponse struct {
	Scheduled      int   `json:"scheduled"`
	FixedCommitted int   `json:"fixedCommitted"`
	Overflowed     int   `json:"overflowed"`
	PendingReview  int   `json:"pendingReview"`
	DurationMs     int64 `json:"durationMs"`
}

// JobQuery filters the job listing the verification harness polls.
type JobQuery struct {
	Status     string `form:"status"`
	Technician string `form:"technician"`
	OrderID    string `form:"orderId"`
	Date       string `form:"date"`
	Page       int    `form:"page"`
	PageSize   int    `form:"limit"`
	SortBy     string `form:"sort"`
	SortOrder  string `form:"order"`
}
