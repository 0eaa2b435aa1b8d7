package employees

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/platform/models"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, q sqlx.ExtContext, e *models.Employee) error {
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO employees (id, company_id, first_name, last_name, email, phone, job_title, department,
			employment_type, start_date, end_date, probation_end_date, weekly_hours, is_active,
			holiday_entitlement_days, holiday_days_used, rtw_status, contract_status, created_at, updated_at)
		VALUES (:id, :company_id, :first_name, :last_name, :email, :phone, :job_title, :department,
			:employment_type, :start_date, :end_date, :probation_end_date, :weekly_hours, :is_active,
			:holiday_entitlement_days, :holiday_days_used, :rtw_status, :contract_status, :created_at, :updated_at)
	`, e)
	return err
}

func (r *Repository) Update(ctx context.Context, e *models.Employee) error {
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE employees SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
			job_title = :job_title, department = :department, employment_type = :employment_type,
			weekly_hours = :weekly_hours, end_date = :end_date, probation_end_date = :probation_end_date,
			holiday_entitlement_days = :holiday_entitlement_days, holiday_days_used = :holiday_days_used,
			updated_at = :updated_at
		WHERE id = :id AND company_id = :company_id
	`, e)
	return err
}

func (r *Repository) Deactivate(ctx context.Context, companyID, id string, now int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE employees SET is_active = ?, updated_at = ? WHERE id = ? AND company_id = ?
	`), false, now, id, companyID)
	return err
}

// Get returns nil, nil when the employee does not exist in the company.
func (r *Repository) Get(ctx context.Context, q sqlx.ExtContext, companyID, id string) (*models.Employee, error) {
	return find(ctx, q, companyID, id)
}

func find(ctx context.Context, q sqlx.ExtContext, companyID, id string) (*models.Employee, error) {
	e := &models.Employee{}
	err := sqlx.GetContext(ctx, q, e, q.Rebind(`SELECT * FROM employees WHERE id = ? AND company_id = ?`), id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Repository) List(ctx context.Context, companyID string, activeOnly bool) ([]models.Employee, error) {
	query := `SELECT * FROM employees WHERE company_id = ?`
	args := []interface{}{companyID}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY last_name, first_name`

	list := []models.Employee{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(query), args...)
	return list, err
}

// ActiveRoster lists active employees sorted by first name.
func (r *Repository) ActiveRoster(ctx context.Context, companyID string) ([]models.Employee, error) {
	list := []models.Employee{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT * FROM employees WHERE company_id = ? AND is_active = ? ORDER BY first_name, last_name
	`), companyID, true)
	return list, err
}

func (r *Repository) SetRTWStatus(ctx context.Context, q sqlx.ExtContext, companyID, id, status string, now int64) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE employees SET rtw_status = ?, updated_at = ? WHERE id = ? AND company_id = ?
	`), status, now, id, companyID)
	return err
}

func (r *Repository) SetContractStatus(ctx context.Context, q sqlx.ExtContext, companyID, id, status string, now int64) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE employees SET contract_status = ?, updated_at = ? WHERE id = ? AND company_id = ?
	`), status, now, id, companyID)
	return err
}

// Lookup resolves an employee that must exist in the company, optionally requiring it to be active.
func Lookup(ctx context.Context, q sqlx.ExtContext, companyID, id string, activeOnly bool) (*models.Employee, error) {
	e, err := find(ctx, q, companyID, id)
	if err != nil || e == nil {
		return nil, err
	}
	if activeOnly && !e.IsActive {
		return nil, nil
	}
	return e, nil
}
