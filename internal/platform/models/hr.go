package models

const (
	RTWValid         = "valid"
	RTWExpiringSoon  = "expiring_soon"
	RTWExpired       = "expired"
	RTWPendingReview = "pending_review"

	Compliant    = "compliant"
	AtRisk       = "at_risk"
	NonCompliant = "non_compliant"

	SigningUnsigned = "unsigned"
	SigningPending  = "pending"
	SigningSigned   = "signed"
)

var EmploymentTypes = []string{"full_time", "part_time", "fixed_term", "zero_hours", "contractor"}

var RTWDocumentTypes = []string{
	"passport", "biometric_residence_permit", "share_code", "birth_certificate",
	"travel_document", "visa", "other",
}

type Employee struct {
	ID                     string  `db:"id" json:"id"`
	CompanyID              string  `db:"company_id" json:"company_id"`
	FirstName              string  `db:"first_name" json:"first_name"`
	LastName               string  `db:"last_name" json:"last_name"`
	Email                  *string `db:"email" json:"email"`
	Phone                  *string `db:"phone" json:"phone"`
	JobTitle               *string `db:"job_title" json:"job_title"`
	Department             *string `db:"department" json:"department"`
	EmploymentType         string  `db:"employment_type" json:"employment_type"`
	StartDate              Date    `db:"start_date" json:"start_date"`
	EndDate                *Date   `db:"end_date" json:"end_date"`
	ProbationEndDate       *Date   `db:"probation_end_date" json:"probation_end_date"`
	WeeklyHours            float64 `db:"weekly_hours" json:"weekly_hours"`
	IsActive               bool    `db:"is_active" json:"is_active"`
	HolidayEntitlementDays float64 `db:"holiday_entitlement_days" json:"holiday_entitlement_days"`
	HolidayDaysUsed        float64 `db:"holiday_days_used" json:"holiday_days_used"`
	RTWStatus              string  `db:"rtw_status" json:"rtw_status"`
	ContractStatus         string  `db:"contract_status" json:"contract_status"`
	CreatedAt              int64   `db:"created_at" json:"created_at"`
	UpdatedAt              int64   `db:"updated_at" json:"updated_at"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type RTWCheck struct {
	ID                string  `db:"id" json:"id"`
	CompanyID         string  `db:"company_id" json:"company_id"`
	EmployeeID        string  `db:"employee_id" json:"employee_id"`
	DocumentType      string  `db:"document_type" json:"document_type"`
	DocumentReference *string `db:"document_reference" json:"document_reference"`
	ShareCode         *string `db:"share_code" json:"share_code"`
	CheckDate         Date    `db:"check_date" json:"check_date"`
	ExpiryDate        *Date   `db:"expiry_date" json:"expiry_date"`
	Status            string  `db:"status" json:"status"`
	CheckedBy         *string `db:"checked_by" json:"checked_by"`
	Notes             *string `db:"notes" json:"notes"`
	CreatedAt         int64   `db:"created_at" json:"created_at"`
	UpdatedAt         int64   `db:"updated_at" json:"updated_at"`
}

type Contract struct {
	ID               string   `db:"id" json:"id"`
	CompanyID        string   `db:"company_id" json:"company_id"`
	EmployeeID       string   `db:"employee_id" json:"employee_id"`
	ContractType     string   `db:"contract_type" json:"contract_type"`
	StartDate        Date     `db:"start_date" json:"start_date"`
	EndDate          *Date    `db:"end_date" json:"end_date"`
	RenewalDate      *Date    `db:"renewal_date" json:"renewal_date"`
	ProbationEndDate *Date    `db:"probation_end_date" json:"probation_end_date"`
	WeeklyHours      *float64 `db:"weekly_hours" json:"weekly_hours"`
	SalaryAmount     *float64 `db:"salary_amount" json:"salary_amount"`
	SalaryCurrency   string   `db:"salary_currency" json:"salary_currency"`
	DocumentPath     *string  `db:"document_path" json:"document_path"`
	IsCurrent        bool     `db:"is_current" json:"is_current"`
	Notes            *string  `db:"notes" json:"notes"`
	SignatureToken   *string  `db:"signature_token" json:"signature_token,omitempty"`
	SigningStatus    string   `db:"signing_status" json:"signing_status"`
	SignedAt         *int64   `db:"signed_at" json:"signed_at,omitempty"`
	SignatureData    *string  `db:"signature_data" json:"-"`
	SignerName       *string  `db:"signer_name" json:"signer_name,omitempty"`
	SignerIP         *string  `db:"signer_ip" json:"signer_ip,omitempty"`
	CreatedAt        int64    `db:"created_at" json:"created_at"`
	UpdatedAt        int64    `db:"updated_at" json:"updated_at"`
}
