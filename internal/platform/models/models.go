package models

const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"

	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusUnpaid   = "unpaid"

	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

var Sectors = []string{
	"care_homes", "hospitality", "recruitment", "construction", "retail",
	"professional_services", "manufacturing", "education", "other",
}

var Roles = []string{RoleOwner, RoleAdmin, RoleManager, RoleViewer}

type Company struct {
	ID                   string  `db:"id" json:"id"`
	Name                 string  `db:"name" json:"name"`
	Sector               string  `db:"sector" json:"sector"`
	EmployeeCountRange   string  `db:"employee_count_range" json:"employee_count_range"`
	AddressLine1         *string `db:"address_line1" json:"address_line1"`
	AddressLine2         *string `db:"address_line2" json:"address_line2"`
	City                 *string `db:"city" json:"city"`
	Postcode             *string `db:"postcode" json:"postcode"`
	Phone                *string `db:"phone" json:"phone"`
	Website              *string `db:"website" json:"website"`
	SubscriptionTier     string  `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionStatus   string  `db:"subscription_status" json:"subscription_status"`
	StripeCustomerID     *string `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	TrialEndsAt          *int64  `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	CreatedAt            int64   `db:"created_at" json:"created_at"`
	UpdatedAt            int64   `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FullName     string `db:"full_name" json:"full_name"`
	LastLoginAt  *int64 `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
	UpdatedAt    int64  `db:"updated_at" json:"updated_at"`
}

// Member binds a user to exactly one company.
type Member struct {
	ID        string `db:"id" json:"id"`
	CompanyID string `db:"company_id" json:"company_id"`
	UserID    string `db:"user_id" json:"user_id"`
	Role      string `db:"role" json:"role"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}

type Invite struct {
	ID          string `db:"id" json:"id"`
	CompanyID   string `db:"company_id" json:"company_id"`
	Code        string `db:"code" json:"code"`
	Email       string `db:"email" json:"email,omitempty"`
	Role        string `db:"role" json:"role"`
	InvitedBy   string `db:"invited_by" json:"invited_by"`
	Status      string `db:"status" json:"status"`
	MaxUses     int    `db:"max_uses" json:"max_uses"`
	CurrentUses int    `db:"current_uses" json:"current_uses"`
	ExpiresAt   int64  `db:"expires_at" json:"expires_at"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	UpdatedAt   int64  `db:"updated_at" json:"updated_at"`
}

// Usable reports whether the invite can still admit a new member at unix time now.
func (i *Invite) Usable(now int64) bool {
	return i.Status == "pending" && i.CurrentUses < i.MaxUses && i.ExpiresAt > now
}
