package entities

import "time"

// JobGrade defines the salary band a requisition's offer must fall inside.
type JobGrade struct {
	JobGradeID string
	TenantID   string
	Code       string
	Title      string
	SalaryMin  float64
	SalaryMax  float64
	Currency   string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (g JobGrade) Contains(salary float64) bool {
	return salary >= g.SalaryMin && salary <= g.SalaryMax
}
