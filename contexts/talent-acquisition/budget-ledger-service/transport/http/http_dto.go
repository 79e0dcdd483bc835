package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateCostCenterRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Currency     string  `json:"currency"`
	BudgetAmount float64 `json:"budget_amount"`
}

type CostCenterResponse struct {
	CostCenterID    string  `json:"cost_center_id"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Currency        string  `json:"currency"`
	BudgetAmount    float64 `json:"budget_amount"`
	UsedAmount      float64 `json:"used_amount"`
	ReservedAmount  float64 `json:"reserved_amount"`
	AvailableAmount float64 `json:"available_amount"`
	IsActive        bool    `json:"is_active"`
}

type CreateJobGradeRequest struct {
	Code      string  `json:"code"`
	Title     string  `json:"title"`
	SalaryMin float64 `json:"salary_min"`
	SalaryMax float64 `json:"salary_max"`
	Currency  string  `json:"currency"`
}

type JobGradeResponse struct {
	JobGradeID string  `json:"job_grade_id"`
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	SalaryMin  float64 `json:"salary_min"`
	SalaryMax  float64 `json:"salary_max"`
	Currency   string  `json:"currency"`
	IsActive   bool    `json:"is_active"`
}

type ReservationDTO struct {
	ReservationID string  `json:"reservation_id"`
	CostCenterID  string  `json:"cost_center_id"`
	RequisitionID string  `json:"requisition_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Headcount     int     `json:"headcount"`
	SalaryPerHead float64 `json:"salary_per_head"`
	Status        string  `json:"status"`
	ReservedAt    string  `json:"reserved_at"`
	ConfirmedAt   string  `json:"confirmed_at,omitempty"`
	ReleasedAt    string  `json:"released_at,omitempty"`
}

type ListReservationsResponse struct {
	Reservations []ReservationDTO `json:"reservations"`
}
