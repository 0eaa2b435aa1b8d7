package rtw

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complyhr/internal/engine/compliance"
	"complyhr/internal/engine/employees"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

type Service struct {
	db        *sqlx.DB
	repo      *Repository
	employees *employees.Repository
	audit     *audit.Logger
	now       func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger) *Service {
	return &Service{
		db:        db,
		repo:      NewRepository(db),
		employees: employees.NewRepository(db),
		audit:     auditLog,
		now:       time.Now,
	}
}

type CreateInput struct {
	EmployeeID        string `json:"employee_id"`
	DocumentType      string `json:"document_type"`
	DocumentReference string `json:"document_reference"`
	ShareCode         string `json:"share_code"`
	CheckDate         string `json:"check_date"`
	ExpiryDate        string `json:"expiry_date"`
	Notes             string `json:"notes"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create records a check and moves the employee's rtw_status to match it in one transaction.
func (s *Service) Create(ctx context.Context, tc tenant.Context, in CreateInput) (*models.RTWCheck, error) {
	if err := validator.OneOf(in.DocumentType, "document type", models.RTWDocumentTypes...); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var shareCode *string
	if in.ShareCode != "" || in.DocumentType == "share_code" {
		if err := validator.ShareCode(in.ShareCode); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		code := validator.NormalizeShareCode(in.ShareCode)
		shareCode = &code
	}

	now := s.now()
	checkDate := models.DateOf(now.UTC())
	if in.CheckDate != "" {
		d, err := models.ParseDate(in.CheckDate)
		if err != nil {
			return nil, apperrors.InvalidInput("check date: " + err.Error())
		}
		checkDate = d
	}
	expiry, err := models.ParseOptionalDate(in.ExpiryDate)
	if err != nil {
		return nil, apperrors.InvalidInput("expiry date: " + err.Error())
	}

	check := &models.RTWCheck{
		ID:                uuid.NewString(),
		CompanyID:         tc.CompanyID,
		EmployeeID:        in.EmployeeID,
		DocumentType:      in.DocumentType,
		DocumentReference: optional(in.DocumentReference),
		ShareCode:         shareCode,
		CheckDate:         checkDate,
		ExpiryDate:        expiry,
		Status:            compliance.RTWStatus(expiry, now),
		CheckedBy:         tc.Actor(),
		Notes:             optional(in.Notes),
		CreatedAt:         now.Unix(),
		UpdatedAt:         now.Unix(),
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		emp, err := employees.Lookup(ctx, tx, tc.CompanyID, in.EmployeeID, true)
		if err != nil {
			return err
		}
		if emp == nil {
			return apperrors.NotFound("Employee not found")
		}
		if err := s.repo.Insert(ctx, tx, check); err != nil {
			return err
		}
		return s.employees.SetRTWStatus(ctx, tx, tc.CompanyID, in.EmployeeID, check.Status, now.Unix())
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "rtw_check", check.ID,
		"Recorded right-to-work check for employee"))
	return check, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context, employeeID string) ([]models.RTWCheck, error) {
	return s.repo.List(ctx, tc.CompanyID, employeeID)
}

// Sweep reclassifies every employee's latest check against today and refreshes
// the employee rollup. It returns the number of checks whose status changed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	latest, err := s.repo.LatestPerEmployee(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, c := range latest {
		status := compliance.RTWStatus(c.ExpiryDate, now)
		if status == c.Status {
			continue
		}
		c := c
		err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
			if err := s.repo.UpdateStatus(ctx, tx, c.ID, status, now.Unix()); err != nil {
				return err
			}
			return s.employees.SetRTWStatus(ctx, tx, c.CompanyID, c.EmployeeID, status, now.Unix())
		})
		if err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}
