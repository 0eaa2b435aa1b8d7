package employees

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"complyhr/internal/engine/compliance"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

type Service struct {
	db    *sqlx.DB
	repo  *Repository
	audit *audit.Logger
	now   func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger) *Service {
	return &Service{db: db, repo: NewRepository(db), audit: auditLog, now: time.Now}
}

type Input struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	JobTitle         string  `json:"job_title"`
	Department       string  `json:"department"`
	EmploymentType   string  `json:"employment_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	ProbationEndDate string  `json:"probation_end_date"`
	WeeklyHours      float64 `json:"weekly_hours"`
	HolidayDaysUsed  float64 `json:"holiday_days_used"`
}

func (in *Input) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validator.Required(in.FirstName, "first name"); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := validator.Required(in.LastName, "last name"); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if in.Email != "" {
		if err := validator.Email(in.Email); err != nil {
			return apperrors.InvalidInput(err.Error())
		}
	}
	if in.EmploymentType == "" {
		in.EmploymentType = "full_time"
	}
	if err := validator.OneOf(in.EmploymentType, "employment type", models.EmploymentTypes...); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if in.WeeklyHours == 0 {
		in.WeeklyHours = 40
	}
	if in.WeeklyHours < 0 || in.WeeklyHours > 168 {
		return apperrors.InvalidInput("weekly hours must be between 0 and 168")
	}
	if in.HolidayDaysUsed < 0 {
		return apperrors.InvalidInput("holiday days used cannot be negative")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) entitlement(start models.Date, weeklyHours float64) float64 {
	days := compliance.DaysPerWeek(weeklyHours, compliance.FullTimeHours)
	return compliance.HolidayEntitlement(&start, days, s.now()).ProRata
}

func (s *Service) Create(ctx context.Context, tc tenant.Context, in Input) (*models.Employee, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	start, err := models.ParseDate(in.StartDate)
	if err != nil {
		return nil, apperrors.InvalidInput("start date: " + err.Error())
	}
	probation, err := models.ParseOptionalDate(in.ProbationEndDate)
	if err != nil {
		return nil, apperrors.InvalidInput("probation end date: " + err.Error())
	}

	now := s.now().Unix()
	e := &models.Employee{
		ID:                     uuid.NewString(),
		CompanyID:              tc.CompanyID,
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		Email:                  optional(in.Email),
		Phone:                  optional(in.Phone),
		JobTitle:               optional(in.JobTitle),
		Department:             optional(in.Department),
		EmploymentType:         in.EmploymentType,
		StartDate:              start,
		ProbationEndDate:       probation,
		WeeklyHours:            in.WeeklyHours,
		IsActive:               true,
		HolidayEntitlementDays: s.entitlement(start, in.WeeklyHours),
		RTWStatus:              models.RTWPendingReview,
		ContractStatus:         models.NonCompliant,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.repo.Insert(ctx, s.db, e); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "employee", e.ID,
		"Added employee "+e.FirstName+" "+e.LastName))
	return e, nil
}

func (s *Service) Update(ctx context.Context, tc tenant.Context, id string, in Input) (*models.Employee, error) {
	e, err := s.Get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	end, err := models.ParseOptionalDate(in.EndDate)
	if err != nil {
		return nil, apperrors.InvalidInput("end date: " + err.Error())
	}
	probation, err := models.ParseOptionalDate(in.ProbationEndDate)
	if err != nil {
		return nil, apperrors.InvalidInput("probation end date: " + err.Error())
	}

	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Email = optional(in.Email)
	e.Phone = optional(in.Phone)
	e.JobTitle = optional(in.JobTitle)
	e.Department = optional(in.Department)
	e.EmploymentType = in.EmploymentType
	e.EndDate = end
	e.ProbationEndDate = probation
	e.HolidayDaysUsed = in.HolidayDaysUsed
	if e.WeeklyHours != in.WeeklyHours {
		e.WeeklyHours = in.WeeklyHours
		e.HolidayEntitlementDays = s.entitlement(e.StartDate, in.WeeklyHours)
	}
	e.UpdatedAt = s.now().Unix()

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "employee", e.ID, "Updated employee details"))
	return e, nil
}

// Deactivate is a soft delete; employees are never removed.
func (s *Service) Deactivate(ctx context.Context, tc tenant.Context, id string) error {
	if _, err := s.Get(ctx, tc, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, tc.CompanyID, id, s.now().Unix()); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionDelete, "employee", id, "Deactivated employee"))
	return nil
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id string) (*models.Employee, error) {
	e, err := s.repo.Get(ctx, s.db, tc.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperrors.NotFound("Employee not found")
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context, activeOnly bool) ([]models.Employee, error) {
	return s.repo.List(ctx, tc.CompanyID, activeOnly)
}
