package dept

import (
	"github.com/google/uuid"
)

// Department is the read-side view of a department. Department management
// lives outside this service; here departments are only resolved and ranked.
type Department struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"dept_name"`
	State         string    `json:"state"`
	PositiveCount int64     `json:"positive_count"`
	NegativeCount int64     `json:"negative_count"`
}

// Ranked pairs a department with its total issue volume for insights.
type Ranked struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	State string `json:"state"`
}
