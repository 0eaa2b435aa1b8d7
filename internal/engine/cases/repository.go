package cases

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

func (r *Repository) Insert(ctx context.Context, tx *sqlx.Tx, c *models.Case) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO cases (id, company_id, employee_id, case_type, case_reference, subject, description, status,
			opened_date, opened_by, assigned_to, created_at, updated_at)
		VALUES (:id, :company_id, :employee_id, :case_type, :case_reference, :subject, :description, :status,
			:opened_date, :opened_by, :assigned_to, :created_at, :updated_at)
	`, c)
	return err
}

func (r *Repository) InsertStep(ctx context.Context, tx *sqlx.Tx, step *models.CaseStep) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO case_steps (id, case_id, step_number, title, description, is_completed, created_at, updated_at)
		VALUES (:id, :case_id, :step_number, :title, :description, :is_completed, :created_at, :updated_at)
	`, step)
	return err
}

func (r *Repository) Get(ctx context.Context, q sqlx.ExtContext, companyID, id string) (*models.Case, error) {
	c := &models.Case{}
	err := sqlx.GetContext(ctx, q, c, q.Rebind(`SELECT * FROM cases WHERE id = ? AND company_id = ?`), id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, companyID, status string) ([]models.Case, error) {
	query := `SELECT * FROM cases WHERE company_id = ?`
	args := []interface{}{companyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	list := []models.Case{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(query), args...)
	return list, err
}

func (r *Repository) Steps(ctx context.Context, q sqlx.ExtContext, caseID string) ([]models.CaseStep, error) {
	steps := []models.CaseStep{}
	err := sqlx.SelectContext(ctx, q, &steps, q.Rebind(`SELECT * FROM case_steps WHERE case_id = ? ORDER BY step_number`), caseID)
	return steps, err
}

// CompleteStep marks a step done unless it already is. It reports whether a row changed.
func (r *Repository) CompleteStep(ctx context.Context, tx *sqlx.Tx, stepID, userID string, notes *string, now int64) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE case_steps SET is_completed = ?, completed_at = ?, completed_by = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE id = ? AND is_completed = ?
	`), true, now, userID, notes, now, stepID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) Close(ctx context.Context, tx *sqlx.Tx, id, outcome string, closed models.Date, now int64) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE cases SET status = ?, outcome = ?, closed_date = ?, updated_at = ? WHERE id = ?
	`), models.CaseClosed, outcome, closed, now, id)
	return err
}

func (r *Repository) SetStatus(ctx context.Context, companyID, id, status string, now int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE cases SET status = ?, updated_at = ? WHERE id = ? AND company_id = ? AND status <> ?
	`), status, now, id, companyID, models.CaseClosed)
	return err
}

// OpenCount counts cases that have not been closed.
func (r *Repository) OpenCount(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM cases WHERE company_id = ? AND status <> ?`), companyID, models.CaseClosed)
	return n, err
}
