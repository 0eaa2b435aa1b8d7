package rtw

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

func (r *Repository) Insert(ctx context.Context, q sqlx.ExtContext, c *models.RTWCheck) error {
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO rtw_checks (id, company_id, employee_id, document_type, document_reference, share_code,
			check_date, expiry_date, status, checked_by, notes, created_at, updated_at)
		VALUES (:id, :company_id, :employee_id, :document_type, :document_reference, :share_code,
			:check_date, :expiry_date, :status, :checked_by, :notes, :created_at, :updated_at)
	`, c)
	return err
}

func (r *Repository) List(ctx context.Context, companyID, employeeID string) ([]models.RTWCheck, error) {
	query := `SELECT * FROM rtw_checks WHERE company_id = ?`
	args := []interface{}{companyID}
	if employeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY check_date DESC, created_at DESC`

	checks := []models.RTWCheck{}
	err := r.db.SelectContext(ctx, &checks, r.db.Rebind(query), args...)
	return checks, err
}

// LatestPerEmployee returns each active employee's most recent check, across all companies.
func (r *Repository) LatestPerEmployee(ctx context.Context) ([]models.RTWCheck, error) {
	checks := []models.RTWCheck{}
	err := r.db.SelectContext(ctx, &checks, r.db.Rebind(`
		SELECT c.* FROM rtw_checks c
		JOIN employees e ON e.id = c.employee_id AND e.company_id = c.company_id
		WHERE e.is_active = ? AND c.id = (
			SELECT c2.id FROM rtw_checks c2 WHERE c2.employee_id = c.employee_id
			ORDER BY c2.check_date DESC, c2.created_at DESC, c2.id DESC LIMIT 1
		)
	`), true)
	return checks, err
}

// LatestForCompany is LatestPerEmployee restricted to one company.
func (r *Repository) LatestForCompany(ctx context.Context, companyID string) ([]models.RTWCheck, error) {
	checks := []models.RTWCheck{}
	err := r.db.SelectContext(ctx, &checks, r.db.Rebind(`
		SELECT c.* FROM rtw_checks c
		JOIN employees e ON e.id = c.employee_id AND e.company_id = c.company_id
		WHERE c.company_id = ? AND e.is_active = ? AND c.id = (
			SELECT c2.id FROM rtw_checks c2 WHERE c2.employee_id = c.employee_id
			ORDER BY c2.check_date DESC, c2.created_at DESC, c2.id DESC LIMIT 1
		)
	`), companyID, true)
	return checks, err
}

func (r *Repository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id, status string, now int64) error {
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE rtw_checks SET status = ?, updated_at = ? WHERE id = ?`), status, now, id)
	return err
}
