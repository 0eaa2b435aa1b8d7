// Package alerts publishes employment-law changes to the companies they affect.
package alerts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/tenant"
)

var severities = []string{"info", "warning", "critical"}

type Service struct {
	repo      *Repository
	companies *repositories.CompanyRepository
	audit     *audit.Logger
	now       func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger) *Service {
	return &Service{
		repo:      NewRepository(db),
		companies: repositories.NewCompanyRepository(db),
		audit:     auditLog,
		now:       time.Now,
	}
}

// List returns active alerts relevant to the tenant's sector. Alerts with no sectors apply to everyone.
func (s *Service) List(ctx context.Context, tc tenant.Context) ([]models.LegalAlert, error) {
	c, err := s.companies.GetByID(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Company not found")
	}
	all, err := s.repo.Active(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]models.LegalAlert, 0, len(all))
	for _, a := range all {
		if len(a.AffectedSectors) == 0 || a.AffectedSectors.Contains(c.Sector) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Unacknowledged counts the relevant alerts the tenant has not acknowledged yet.
func (s *Service) Unacknowledged(ctx context.Context, tc tenant.Context) (int, error) {
	list, err := s.List(ctx, tc)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range list {
		if !a.Acknowledged {
			n++
		}
	}
	return n, nil
}

func (s *Service) Acknowledge(ctx context.Context, tc tenant.Context, alertID, actionTaken string) error {
	ok, err := s.repo.Exists(ctx, alertID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Alert not found")
	}

	ack := &models.AlertAcknowledgement{
		ID:             uuid.NewString(),
		CompanyID:      tc.CompanyID,
		AlertID:        alertID,
		AcknowledgedBy: tc.Actor(),
		AcknowledgedAt: s.now().Unix(),
	}
	if a := strings.TrimSpace(actionTaken); a != "" {
		ack.ActionTaken = &a
	}
	if err := s.repo.Acknowledge(ctx, ack); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("Alert already acknowledged")
		}
		return err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionApprove, "legal_alert", alertID, "Acknowledged legal alert"))
	return nil
}

// Seed upserts an alert by id; used by the migrate seed command.
func (s *Service) Seed(ctx context.Context, a models.LegalAlert, effectiveDate string) error {
	if err := validator.Required(a.ID, "id"); err != nil {
		return err
	}
	if a.Severity == "" {
		a.Severity = "info"
	}
	if err := validator.OneOf(a.Severity, "severity", severities...); err != nil {
		return err
	}
	d, err := models.ParseOptionalDate(effectiveDate)
	if err != nil {
		return err
	}
	a.EffectiveDate = d
	if a.CreatedAt == 0 {
		a.CreatedAt = s.now().Unix()
	}
	return s.repo.Upsert(ctx, &a)
}
