// internal/domain/models/paginated.go
package models

// Entity names used as collection names, route prefixes and fetch-cache keys.
const (
	EntityUsers                  = "users"
	EntityPayrolls               = "payrolls"
	EntityVacations              = "vacations"
	EntityTimeTrackings          = "time_trackings"
	EntityPerformanceEvaluations = "performance_evaluations"
)

// ListQuery is the base query every list call accepts.
// Limit <= 0 means "store default"; Offset < 0 is treated as 0.
type ListQuery struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// Paginated is one page of entities plus the total number of matching
// entities. A Paginated value is a snapshot; callers must not mutate Data.
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"totalCount"`
}
