package models

const (
	PolicyDraft    = "draft"
	PolicyActive   = "active"
	PolicyArchived = "archived"
)

type PolicyTemplate struct {
	ID                string     `db:"id" json:"id" yaml:"id"`
	Title             string     `db:"title" json:"title" yaml:"title"`
	Category          string     `db:"category" json:"category" yaml:"category"`
	Description       *string    `db:"description" json:"description" yaml:"description"`
	Content           string     `db:"content" json:"content" yaml:"content"`
	ApplicableSectors StringList `db:"applicable_sectors" json:"applicable_sectors" yaml:"applicable_sectors"`
	MinEmployees      int        `db:"min_employees" json:"min_employees" yaml:"min_employees"`
	IsMandatory       bool       `db:"is_mandatory" json:"is_mandatory" yaml:"is_mandatory"`
	Version           string     `db:"version" json:"version" yaml:"version"`
	CreatedAt         int64      `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt         int64      `db:"updated_at" json:"updated_at" yaml:"-"`
}

// AppliesTo treats an empty sector list as applying to every sector.
func (t *PolicyTemplate) AppliesTo(sector string) bool {
	return len(t.ApplicableSectors) == 0 || t.ApplicableSectors.Contains(sector)
}

type CompanyPolicy struct {
	ID                      string  `db:"id" json:"id"`
	CompanyID               string  `db:"company_id" json:"company_id"`
	TemplateID              *string `db:"template_id" json:"template_id"`
	Title                   string  `db:"title" json:"title"`
	Description             *string `db:"description" json:"description"`
	Content                 *string `db:"content" json:"content,omitempty"`
	FilePath                *string `db:"file_path" json:"file_path"`
	FileName                *string `db:"file_name" json:"file_name"`
	FileSizeBytes           *int64  `db:"file_size_bytes" json:"file_size_bytes"`
	Category                string  `db:"category" json:"category"`
	Status                  string  `db:"status" json:"status"`
	Version                 string  `db:"version" json:"version"`
	ReviewDate              *Date   `db:"review_date" json:"review_date"`
	AccessToken             *string `db:"access_token" json:"access_token,omitempty"`
	RequiresAcknowledgement bool    `db:"requires_acknowledgement" json:"requires_acknowledgement"`
	ActivatedAt             *int64  `db:"activated_at" json:"activated_at,omitempty"`
	ActivatedBy             *string `db:"activated_by" json:"activated_by,omitempty"`
	ArchivedAt              *int64  `db:"archived_at" json:"archived_at,omitempty"`
	ArchivedBy              *string `db:"archived_by" json:"archived_by,omitempty"`
	UploadedBy              *string `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt               int64   `db:"created_at" json:"created_at"`
	UpdatedAt               int64   `db:"updated_at" json:"updated_at"`
}

type PolicyAcknowledgement struct {
	ID             string  `db:"id" json:"id"`
	PolicyID       string  `db:"policy_id" json:"policy_id"`
	CompanyID      string  `db:"company_id" json:"company_id"`
	EmployeeID     *string `db:"employee_id" json:"employee_id"`
	SignerName     string  `db:"signer_name" json:"signer_name"`
	SignerEmail    *string `db:"signer_email" json:"signer_email"`
	IPAddress      *string `db:"ip_address" json:"ip_address"`
	UserAgent      *string `db:"user_agent" json:"user_agent"`
	AcknowledgedAt int64   `db:"acknowledged_at" json:"acknowledged_at"`
}
