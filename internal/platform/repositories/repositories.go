package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/platform/models"
)

func get(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type CompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, c *models.Company) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO companies (id, name, sector, employee_count_range, subscription_tier, subscription_status, trial_ends_at, created_at, updated_at)
		VALUES (:id, :name, :sector, :employee_count_range, :subscription_tier, :subscription_status, :trial_ends_at, :created_at, :updated_at)
	`, c)
	return err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	c := &models.Company{}
	found, err := get(ctx, r.db, c, `SELECT * FROM companies WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return c, nil
}

func (r *CompanyRepository) GetByCustomerID(ctx context.Context, customerID string) (*models.Company, error) {
	c := &models.Company{}
	found, err := get(ctx, r.db, c, `SELECT * FROM companies WHERE stripe_customer_id = ?`, customerID)
	if err != nil || !found {
		return nil, err
	}
	return c, nil
}

func (r *CompanyRepository) UpdateSettings(ctx context.Context, c *models.Company) error {
	c.UpdatedAt = time.Now().Unix()
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE companies SET name = :name, sector = :sector, employee_count_range = :employee_count_range,
			address_line1 = :address_line1, address_line2 = :address_line2, city = :city, postcode = :postcode,
			phone = :phone, website = :website, updated_at = :updated_at
		WHERE id = :id
	`, c)
	return err
}

func (r *CompanyRepository) SetCustomerID(ctx context.Context, companyID, customerID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE companies SET stripe_customer_id = ?, updated_at = ? WHERE id = ?`),
		customerID, time.Now().Unix(), companyID)
	return err
}

// UpdateSubscription applies a billing event keyed by customer id. It reports
// whether any company matched.
func (r *CompanyRepository) UpdateSubscription(ctx context.Context, customerID, tier, status, subscriptionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE companies SET subscription_tier = ?, subscription_status = ?, stripe_subscription_id = ?, updated_at = ?
		WHERE stripe_customer_id = ?
	`), tier, status, subscriptionID, time.Now().Unix(), customerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CompanyRepository) UpdateSubscriptionStatus(ctx context.Context, customerID, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE companies SET subscription_status = ?, updated_at = ? WHERE stripe_customer_id = ?
	`), status, time.Now().Unix(), customerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ExpireTrials moves trialing companies without a subscription past their trial end to past_due.
func (r *CompanyRepository) ExpireTrials(ctx context.Context, now int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE companies SET subscription_status = ?, updated_at = ?
		WHERE subscription_status = ? AND stripe_subscription_id IS NULL
			AND trial_ends_at IS NOT NULL AND trial_ends_at < ?
	`), models.StatusPastDue, now, models.StatusTrialing, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :created_at, :updated_at)
	`, user)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	found, err := get(ctx, r.db, user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	found, err := get(ctx, r.db, user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, timestamp int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), timestamp, userID)
	return err
}

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, m *models.Member) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO company_members (id, company_id, user_id, role, created_at, updated_at)
		VALUES (:id, :company_id, :user_id, :role, :created_at, :updated_at)
	`, m)
	return err
}

// GetByUserID returns nil, nil when the user has not joined a company yet.
func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	m := &models.Member{}
	found, err := get(ctx, r.db, m, `SELECT * FROM company_members WHERE user_id = ?`, userID)
	if err != nil || !found {
		return nil, err
	}
	return m, nil
}

type InviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO invites (id, company_id, code, email, role, invited_by, status, max_uses, current_uses, expires_at, created_at, updated_at)
		VALUES (:id, :company_id, :code, :email, :role, :invited_by, :status, :max_uses, :current_uses, :expires_at, :created_at, :updated_at)
	`, invite)
	return err
}

func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	invite := &models.Invite{}
	found, err := get(ctx, r.db, invite, `SELECT * FROM invites WHERE code = ?`, code)
	if err != nil || !found {
		return nil, err
	}
	return invite, nil
}

func (r *InviteRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM invites WHERE code = ?)`), code)
	return exists, err
}

func (r *InviteRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Invite, error) {
	invites := []models.Invite{}
	err := r.db.SelectContext(ctx, &invites, r.db.Rebind(`SELECT * FROM invites WHERE company_id = ? ORDER BY created_at DESC`), companyID)
	return invites, err
}

// IncrementUsesTx claims one use of a still-usable invite and flips it to accepted once
// its last use is taken. It reports false when the invite was spent or expired meanwhile.
func (r *InviteRepository) IncrementUsesTx(ctx context.Context, tx *sqlx.Tx, id string, now int64) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE invites SET current_uses = current_uses + 1,
			status = CASE WHEN current_uses + 1 >= max_uses THEN 'accepted' ELSE status END,
			updated_at = ?
		WHERE id = ? AND status = 'pending' AND current_uses < max_uses AND expires_at > ?
	`), now, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
