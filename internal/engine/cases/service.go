// Package cases runs disciplinary and grievance cases through their fixed ACAS-style workflows.
package cases

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complyhr/internal/engine/employees"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

var manualStatuses = []string{models.CaseOpen, models.CaseInvestigation, models.CaseHearing, models.CaseAppeal}

type Service struct {
	db    *sqlx.DB
	repo  *Repository
	audit *audit.Logger
	now   func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger) *Service {
	return &Service{db: db, repo: NewRepository(db), audit: auditLog, now: time.Now}
}

type CreateInput struct {
	EmployeeID  string `json:"employee_id"`
	CaseType    string `json:"case_type"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// Reference derives a case reference from the creation instant, e.g. DIS-M1A2B3C4.
func Reference(caseType string, at time.Time) string {
	return referencePrefix[caseType] + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}

// CreateCase opens a case and materialises every workflow step in one transaction.
func (s *Service) CreateCase(ctx context.Context, tc tenant.Context, in CreateInput) (*models.Case, error) {
	steps := Steps(in.CaseType)
	if steps == nil {
		return nil, apperrors.InvalidInput("case type must be disciplinary or grievance")
	}
	subject := strings.TrimSpace(in.Subject)
	if err := validator.Required(subject, "subject"); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := s.now()
	c := &models.Case{
		ID:            uuid.NewString(),
		CompanyID:     tc.CompanyID,
		EmployeeID:    in.EmployeeID,
		CaseType:      in.CaseType,
		CaseReference: Reference(in.CaseType, now),
		Subject:       subject,
		Status:        models.CaseOpen,
		OpenedDate:    models.DateOf(now.UTC()),
		OpenedBy:      tc.Actor(),
		AssignedTo:    tc.Actor(),
		CreatedAt:     now.Unix(),
		UpdatedAt:     now.Unix(),
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		c.Description = &d
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		emp, err := employees.Lookup(ctx, tx, tc.CompanyID, in.EmployeeID, true)
		if err != nil {
			return err
		}
		if emp == nil {
			return apperrors.NotFound("Employee not found")
		}
		if err := s.repo.Insert(ctx, tx, c); err != nil {
			return err
		}
		for i, tpl := range steps {
			desc := tpl.Description
			step := models.CaseStep{
				ID:          uuid.NewString(),
				CaseID:      c.ID,
				StepNumber:  i + 1,
				Title:       tpl.Title,
				Description: &desc,
				CreatedAt:   now.Unix(),
				UpdatedAt:   now.Unix(),
			}
			if err := s.repo.InsertStep(ctx, tx, &step); err != nil {
				return err
			}
			c.Steps = append(c.Steps, step)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "case", c.ID, "Opened "+c.CaseType+" case: "+c.Subject))
	return c, nil
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id string) (*models.Case, error) {
	c, err := s.repo.Get(ctx, s.db, tc.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Case not found")
	}
	if c.Steps, err = s.repo.Steps(ctx, s.db, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context, status string) ([]models.Case, error) {
	return s.repo.List(ctx, tc.CompanyID, status)
}

// CompleteStep completes steps strictly in order; a completed step cannot be reopened.
func (s *Service) CompleteStep(ctx context.Context, tc tenant.Context, caseID, stepID, notes string) (*models.Case, error) {
	now := s.now()
	var note *string
	if n := strings.TrimSpace(notes); n != "" {
		note = &n
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c, err := s.repo.Get(ctx, tx, tc.CompanyID, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperrors.NotFound("Case not found")
		}
		steps, err := s.repo.Steps(ctx, tx, caseID)
		if err != nil {
			return err
		}

		var target *models.CaseStep
		var firstOpen *models.CaseStep
		for i := range steps {
			if steps[i].ID == stepID {
				target = &steps[i]
			}
			if firstOpen == nil && !steps[i].IsCompleted {
				firstOpen = &steps[i]
			}
		}
		switch {
		case target == nil:
			return apperrors.NotFound("Step not found")
		case c.Status == models.CaseClosed:
			return apperrors.InvalidInput("Case is closed")
		case target.IsCompleted:
			return apperrors.InvalidInput("Step is already completed")
		case firstOpen.ID != target.ID:
			return apperrors.InvalidInput("Complete step " + strconv.Itoa(firstOpen.StepNumber) + " first")
		}

		done, err := s.repo.CompleteStep(ctx, tx, stepID, tc.UserID, note, now.Unix())
		if err != nil {
			return err
		}
		if !done {
			return apperrors.InvalidInput("Step is already completed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry := audit.ByUser(tc, audit.ActionCompleteStep, "case_step", stepID, "Completed workflow step")
	entry.Metadata = map[string]interface{}{"case_id": caseID}
	s.audit.Record(ctx, entry)
	return s.Get(ctx, tc, caseID)
}

func (s *Service) CloseCase(ctx context.Context, tc tenant.Context, caseID, outcome string) (*models.Case, error) {
	now := s.now()

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c, err := s.repo.Get(ctx, tx, tc.CompanyID, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperrors.NotFound("Case not found")
		}
		if c.Status == models.CaseClosed {
			return apperrors.InvalidInput("Case is already closed")
		}
		if err := validator.OneOf(outcome, "outcome", Outcomes(c.CaseType)...); err != nil {
			return apperrors.InvalidInput(err.Error())
		}
		steps, err := s.repo.Steps(ctx, tx, caseID)
		if err != nil {
			return err
		}
		for _, step := range steps {
			if !step.IsCompleted {
				return apperrors.InvalidInput("All workflow steps must be completed before closing the case")
			}
		}
		return s.repo.Close(ctx, tx, caseID, outcome, models.DateOf(now.UTC()), now.Unix())
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "case", caseID,
		"Closed case with outcome: "+strings.ReplaceAll(outcome, "_", " ")))
	return s.Get(ctx, tc, caseID)
}

// UpdateStatus moves an open case between the intermediate states. Closing goes through CloseCase.
func (s *Service) UpdateStatus(ctx context.Context, tc tenant.Context, caseID, status string) (*models.Case, error) {
	if err := validator.OneOf(status, "status", manualStatuses...); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	c, err := s.repo.Get(ctx, s.db, tc.CompanyID, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Case not found")
	}
	if c.Status == models.CaseClosed {
		return nil, apperrors.InvalidInput("Case is closed")
	}
	if err := s.repo.SetStatus(ctx, tc.CompanyID, caseID, status, s.now().Unix()); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "case", caseID, "Updated case status to "+status))
	return s.Get(ctx, tc, caseID)
}
