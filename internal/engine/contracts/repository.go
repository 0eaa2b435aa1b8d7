package contracts

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

func (r *Repository) Insert(ctx context.Context, q sqlx.ExtContext, c *models.Contract) error {
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO contracts (id, company_id, employee_id, contract_type, start_date, end_date, renewal_date,
			probation_end_date, weekly_hours, salary_amount, salary_currency, is_current, notes, signing_status,
			created_at, updated_at)
		VALUES (:id, :company_id, :employee_id, :contract_type, :start_date, :end_date, :renewal_date,
			:probation_end_date, :weekly_hours, :salary_amount, :salary_currency, :is_current, :notes, :signing_status,
			:created_at, :updated_at)
	`, c)
	return err
}

// UnflagCurrent clears is_current on every earlier contract of the employee.
func (r *Repository) UnflagCurrent(ctx context.Context, q sqlx.ExtContext, companyID, employeeID string, now int64) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE contracts SET is_current = ?, updated_at = ?
		WHERE company_id = ? AND employee_id = ? AND is_current = ?
	`), false, now, companyID, employeeID, true)
	return err
}

func (r *Repository) Get(ctx context.Context, companyID, id string) (*models.Contract, error) {
	c := &models.Contract{}
	err := r.db.GetContext(ctx, c, r.db.Rebind(`SELECT * FROM contracts WHERE id = ? AND company_id = ?`), id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, companyID, employeeID string, currentOnly bool) ([]models.Contract, error) {
	query := `SELECT * FROM contracts WHERE company_id = ?`
	args := []interface{}{companyID}
	if employeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, employeeID)
	}
	if currentOnly {
		query += ` AND is_current = ?`
		args = append(args, true)
	}
	query += ` ORDER BY start_date DESC, created_at DESC`

	list := []models.Contract{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(query), args...)
	return list, err
}

type signingRow struct {
	models.Contract
	EmployeeFirstName string `db:"employee_first_name"`
	EmployeeLastName  string `db:"employee_last_name"`
	CompanyName       string `db:"company_name"`
}

func (r *Repository) GetBySignatureToken(ctx context.Context, token string) (*signingRow, error) {
	row := &signingRow{}
	err := r.db.GetContext(ctx, row, r.db.Rebind(`
		SELECT c.*, e.first_name AS employee_first_name, e.last_name AS employee_last_name, co.name AS company_name
		FROM contracts c
		JOIN employees e ON e.id = c.employee_id
		JOIN companies co ON co.id = c.company_id
		WHERE c.signature_token = ?
	`), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) SetSigningToken(ctx context.Context, companyID, id, token string, now int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE contracts SET signature_token = ?, signing_status = ?, updated_at = ?
		WHERE id = ? AND company_id = ? AND signing_status <> ?
	`), token, models.SigningPending, now, id, companyID, models.SigningSigned)
	return err
}

// Sign stores the signature unless the contract is already signed. It reports whether a row changed.
func (r *Repository) Sign(ctx context.Context, id, data, name, ip string, now int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE contracts SET signing_status = ?, signed_at = ?, signature_data = ?, signer_name = ?, signer_ip = ?, updated_at = ?
		WHERE id = ? AND signing_status <> ?
	`), models.SigningSigned, now, data, name, ip, now, id, models.SigningSigned)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) SetDocumentPath(ctx context.Context, companyID, id, path string, now int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE contracts SET document_path = ?, updated_at = ? WHERE id = ? AND company_id = ?
	`), path, now, id, companyID)
	return err
}

type rollupRow struct {
	EmployeeID     string       `db:"employee_id"`
	CompanyID      string       `db:"company_id"`
	ContractStatus string       `db:"contract_status"`
	ContractID     *string      `db:"contract_id"`
	RenewalDate    *models.Date `db:"renewal_date"`
	EndDate        *models.Date `db:"end_date"`
}

// Rollups pairs every active employee with their current contract, if any.
func (r *Repository) Rollups(ctx context.Context) ([]rollupRow, error) {
	rows := []rollupRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT e.id AS employee_id, e.company_id, e.contract_status, c.id AS contract_id, c.renewal_date, c.end_date
		FROM employees e
		LEFT JOIN contracts c ON c.employee_id = e.id AND c.company_id = e.company_id AND c.is_current = ?
		WHERE e.is_active = ?
	`), true, true)
	return rows, err
}
