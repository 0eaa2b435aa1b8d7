package policies

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

func (r *Repository) Templates(ctx context.Context) ([]models.PolicyTemplate, error) {
	list := []models.PolicyTemplate{}
	err := r.db.SelectContext(ctx, &list, `SELECT * FROM policy_templates ORDER BY is_mandatory DESC, title`)
	return list, err
}

func (r *Repository) Template(ctx context.Context, id string) (*models.PolicyTemplate, error) {
	t := &models.PolicyTemplate{}
	err := r.db.GetContext(ctx, t, r.db.Rebind(`SELECT * FROM policy_templates WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpsertTemplate inserts a template or refreshes its content by id.
func (r *Repository) UpsertTemplate(ctx context.Context, t *models.PolicyTemplate) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO policy_templates (id, title, category, description, content, applicable_sectors, min_employees,
			is_mandatory, version, created_at, updated_at)
		VALUES (:id, :title, :category, :description, :content, :applicable_sectors, :min_employees,
			:is_mandatory, :version, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, category = excluded.category,
			description = excluded.description, content = excluded.content,
			applicable_sectors = excluded.applicable_sectors, min_employees = excluded.min_employees,
			is_mandatory = excluded.is_mandatory, version = excluded.version, updated_at = excluded.updated_at
	`, t)
	return err
}

func (r *Repository) Insert(ctx context.Context, p *models.CompanyPolicy) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO company_policies (id, company_id, template_id, title, description, content, file_path, file_name,
			file_size_bytes, category, status, version, review_date, requires_acknowledgement, uploaded_by,
			created_at, updated_at)
		VALUES (:id, :company_id, :template_id, :title, :description, :content, :file_path, :file_name,
			:file_size_bytes, :category, :status, :version, :review_date, :requires_acknowledgement, :uploaded_by,
			:created_at, :updated_at)
	`, p)
	return err
}

func (r *Repository) Get(ctx context.Context, companyID, id string) (*models.CompanyPolicy, error) {
	p := &models.CompanyPolicy{}
	err := r.db.GetContext(ctx, p, r.db.Rebind(`SELECT * FROM company_policies WHERE id = ? AND company_id = ?`), id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetByAccessToken(ctx context.Context, token string) (*models.CompanyPolicy, error) {
	p := &models.CompanyPolicy{}
	err := r.db.GetContext(ctx, p, r.db.Rebind(`SELECT * FROM company_policies WHERE access_token = ?`), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, companyID, status string) ([]models.CompanyPolicy, error) {
	query := `SELECT * FROM company_policies WHERE company_id = ?`
	args := []interface{}{companyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, title`

	list := []models.CompanyPolicy{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(query), args...)
	return list, err
}

func (r *Repository) CountNonArchived(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM company_policies WHERE company_id = ? AND status <> ?
	`), companyID, models.PolicyArchived)
	return n, err
}

// OverdueReviews counts active policies whose review date is before today (YYYY-MM-DD).
func (r *Repository) OverdueReviews(ctx context.Context, companyID string, today models.Date) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM company_policies
		WHERE company_id = ? AND status = ? AND review_date IS NOT NULL AND review_date < ?
	`), companyID, models.PolicyActive, today)
	return n, err
}

func (r *Repository) UpdateDetails(ctx context.Context, p *models.CompanyPolicy) error {
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE company_policies SET title = :title, description = :description, category = :category,
			version = :version, review_date = :review_date, requires_acknowledgement = :requires_acknowledgement,
			updated_at = :updated_at
		WHERE id = :id AND company_id = :company_id
	`, p)
	return err
}

// Transition moves a policy between statuses only if it is still in from. It reports whether a row changed.
func (r *Repository) Transition(ctx context.Context, p *models.CompanyPolicy, from string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE company_policies SET status = ?, access_token = ?, activated_at = ?, activated_by = ?,
			archived_at = ?, archived_by = ?, updated_at = ?
		WHERE id = ? AND company_id = ? AND status = ?
	`), p.Status, p.AccessToken, p.ActivatedAt, p.ActivatedBy, p.ArchivedAt, p.ArchivedBy, p.UpdatedAt,
		p.ID, p.CompanyID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) SetAccessToken(ctx context.Context, companyID, id, token string, now int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE company_policies SET access_token = ?, updated_at = ? WHERE id = ? AND company_id = ?
	`), token, now, id, companyID)
	return err
}

func (r *Repository) InsertAcknowledgement(ctx context.Context, a *models.PolicyAcknowledgement) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO policy_acknowledgements (id, policy_id, company_id, employee_id, signer_name, signer_email,
			ip_address, user_agent, acknowledged_at)
		VALUES (:id, :policy_id, :company_id, :employee_id, :signer_name, :signer_email,
			:ip_address, :user_agent, :acknowledged_at)
	`, a)
	return err
}

func (r *Repository) Acknowledged(ctx context.Context, policyID, employeeID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM policy_acknowledgements WHERE policy_id = ? AND employee_id = ?
	`), policyID, employeeID)
	return n > 0, err
}

func (r *Repository) Acknowledgements(ctx context.Context, policyID string) ([]models.PolicyAcknowledgement, error) {
	list := []models.PolicyAcknowledgement{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT * FROM policy_acknowledgements WHERE policy_id = ? ORDER BY acknowledged_at DESC, signer_name
	`), policyID)
	return list, err
}

type rosterEntry struct {
	ID           string `db:"id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Acknowledged bool   `db:"acknowledged"`
}

// Roster lists a company's active employees with whether each has acknowledged the policy.
func (r *Repository) Roster(ctx context.Context, companyID, policyID string) ([]rosterEntry, error) {
	list := []rosterEntry{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
		SELECT e.id, e.first_name, e.last_name,
			EXISTS (SELECT 1 FROM policy_acknowledgements a WHERE a.policy_id = ? AND a.employee_id = e.id) AS acknowledged
		FROM employees e
		WHERE e.company_id = ? AND e.is_active = ?
		ORDER BY e.first_name, e.last_name
	`), policyID, companyID, true)
	return list, err
}
