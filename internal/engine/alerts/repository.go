package alerts

import (
	"context"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/platform/models"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Active lists active alerts flagged with whether the company has acknowledged each.
func (r *Repository) Active(ctx context.Context, companyID string) ([]models.LegalAlert, error) {
	list := []models.LegalAlert{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT a.*,
			EXISTS (SELECT 1 FROM alert_acknowledgements k WHERE k.alert_id = a.id AND k.company_id = ?) AS acknowledged
		FROM legal_alerts a
		WHERE a.is_active = ?
		ORDER BY a.created_at DESC, a.id
	`), companyID, true)
	return list, err
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM legal_alerts WHERE id = ? AND is_active = ?`), id, true)
	return n > 0, err
}

func (r *Repository) Acknowledge(ctx context.Context, a *models.AlertAcknowledgement) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO alert_acknowledgements (id, company_id, alert_id, acknowledged_by, action_taken, acknowledged_at)
		VALUES (:id, :company_id, :alert_id, :acknowledged_by, :action_taken, :acknowledged_at)
	`, a)
	return err
}

func (r *Repository) Upsert(ctx context.Context, a *models.LegalAlert) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO legal_alerts (id, title, summary, detail, severity, effective_date, affected_sectors, source_url,
			is_active, created_at)
		VALUES (:id, :title, :summary, :detail, :severity, :effective_date, :affected_sectors, :source_url,
			:is_active, :created_at)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, summary = excluded.summary, detail = excluded.detail,
			severity = excluded.severity, effective_date = excluded.effective_date,
			affected_sectors = excluded.affected_sectors, source_url = excluded.source_url, is_active = excluded.is_active
	`, a)
	return err
}
