package invites

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/tenant"
)

const TTL = 7 * 24 * time.Hour

type Service struct {
	repo  *repositories.InviteRepository
	audit *audit.Logger
	now   func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger) *Service {
	return &Service{
		repo:  repositories.NewInviteRepository(db),
		audit: auditLog,
		now:   time.Now,
	}
}

type CreateInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Create issues a single-use invite into the caller's company. Owners are
// created at onboarding only, so the role must be admin, manager or viewer.
func (s *Service) Create(ctx context.Context, tc tenant.Context, in CreateInput) (*models.Invite, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		if err := validator.Email(email); err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
	}
	if in.Role == "" {
		in.Role = models.RoleManager
	}
	if err := validator.OneOf(in.Role, "role", models.RoleAdmin, models.RoleManager, models.RoleViewer); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	code, err := GenerateCode(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invite := &models.Invite{
		ID:        uuid.NewString(),
		CompanyID: tc.CompanyID,
		Code:      code,
		Email:     email,
		Role:      in.Role,
		InvitedBy: tc.UserID,
		Status:    "pending",
		MaxUses:   1,
		ExpiresAt: now.Add(TTL).Unix(),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}
	if err := s.repo.Create(ctx, invite); err != nil {
		return nil, err
	}

	desc := "Invited a " + invite.Role
	if email != "" {
		desc += ": " + email
	}
	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "invite", invite.ID, desc))
	return invite, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context) ([]models.Invite, error) {
	return s.repo.ListByCompany(ctx, tc.CompanyID)
}
