package models

const (
	CaseDisciplinary = "disciplinary"
	CaseGrievance    = "grievance"

	CaseOpen          = "open"
	CaseInvestigation = "investigation"
	CaseHearing       = "hearing"
	CaseAppeal        = "appeal"
	CaseClosed        = "closed"
)

type Case struct {
	ID            string  `db:"id" json:"id"`
	CompanyID     string  `db:"company_id" json:"company_id"`
	EmployeeID    string  `db:"employee_id" json:"employee_id"`
	CaseType      string  `db:"case_type" json:"case_type"`
	CaseReference string  `db:"case_reference" json:"case_reference"`
	Subject       string  `db:"subject" json:"subject"`
	Description   *string `db:"description" json:"description"`
	Status        string  `db:"status" json:"status"`
	Outcome       *string `db:"outcome" json:"outcome"`
	OpenedDate    Date    `db:"opened_date" json:"opened_date"`
	ClosedDate    *Date   `db:"closed_date" json:"closed_date"`
	OpenedBy      *string `db:"opened_by" json:"opened_by"`
	AssignedTo    *string `db:"assigned_to" json:"assigned_to"`
	CreatedAt     int64   `db:"created_at" json:"created_at"`
	UpdatedAt     int64   `db:"updated_at" json:"updated_at"`

	Steps []CaseStep `db:"-" json:"steps,omitempty"`
}

type CaseStep struct {
	ID          string  `db:"id" json:"id"`
	CaseID      string  `db:"case_id" json:"case_id"`
	StepNumber  int     `db:"step_number" json:"step_number"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	IsCompleted bool    `db:"is_completed" json:"is_completed"`
	CompletedAt *int64  `db:"completed_at" json:"completed_at"`
	CompletedBy *string `db:"completed_by" json:"completed_by"`
	Notes       *string `db:"notes" json:"notes"`
	CreatedAt   int64   `db:"created_at" json:"created_at"`
	UpdatedAt   int64   `db:"updated_at" json:"updated_at"`
}
