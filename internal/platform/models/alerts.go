package models

type LegalAlert struct {
	ID              string     `db:"id" json:"id" yaml:"id"`
	Title           string     `db:"title" json:"title" yaml:"title"`
	Summary         string     `db:"summary" json:"summary" yaml:"summary"`
	Detail          *string    `db:"detail" json:"detail" yaml:"detail"`
	Severity        string     `db:"severity" json:"severity" yaml:"severity"`
	EffectiveDate   *Date      `db:"effective_date" json:"effective_date" yaml:"-"`
	AffectedSectors StringList `db:"affected_sectors" json:"affected_sectors" yaml:"affected_sectors"`
	SourceURL       *string    `db:"source_url" json:"source_url" yaml:"source_url"`
	IsActive        bool       `db:"is_active" json:"is_active" yaml:"is_active"`
	CreatedAt       int64      `db:"created_at" json:"created_at" yaml:"-"`

	Acknowledged bool `db:"acknowledged" json:"acknowledged" yaml:"-"`
}

type AlertAcknowledgement struct {
	ID             string  `db:"id" json:"id"`
	CompanyID      string  `db:"company_id" json:"company_id"`
	AlertID        string  `db:"alert_id" json:"alert_id"`
	AcknowledgedBy *string `db:"acknowledged_by" json:"acknowledged_by"`
	ActionTaken    *string `db:"action_taken" json:"action_taken"`
	AcknowledgedAt int64   `db:"acknowledged_at" json:"acknowledged_at"`
}
