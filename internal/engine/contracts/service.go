package contracts

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"complyhr/internal/engine/compliance"
	"complyhr/internal/engine/employees"
	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/qr"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/storage"
	"complyhr/internal/platform/tenant"
)

// MaxSignatureChars caps the base64 signature image accepted from the public signing page.
const MaxSignatureChars = 500000

type Config struct {
	AppURL         string
	MaxUploadBytes int64
}

type Service struct {
	db        *sqlx.DB
	repo      *Repository
	employees *employees.Repository
	audit     *audit.Logger
	bucket    *storage.Bucket
	cfg       Config
	now       func() time.Time
}

func NewService(db *sqlx.DB, auditLog *audit.Logger, bucket *storage.Bucket, cfg Config) *Service {
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &Service{
		db:        db,
		repo:      NewRepository(db),
		employees: employees.NewRepository(db),
		audit:     auditLog,
		bucket:    bucket,
		cfg:       cfg,
		now:       time.Now,
	}
}

// View is a contract as shown to the company: expiry classification and a short-lived document link.
type View struct {
	models.Contract
	ExpiryStatus string `json:"expiry_status"`
	DocumentURL  string `json:"document_url,omitempty"`
}

func (s *Service) view(c models.Contract) View {
	now := s.now()
	v := View{Contract: c, ExpiryStatus: compliance.ContractExpiryStatus(c.RenewalDate, c.EndDate, now)}
	if c.DocumentPath != nil {
		v.DocumentURL = s.bucket.SignedURL(*c.DocumentPath, now)
	}
	return v
}

type CreateInput struct {
	EmployeeID       string   `json:"employee_id"`
	ContractType     string   `json:"contract_type"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	RenewalDate      string   `json:"renewal_date"`
	ProbationEndDate string   `json:"probation_end_date"`
	WeeklyHours      *float64 `json:"weekly_hours"`
	SalaryAmount     *float64 `json:"salary_amount"`
	SalaryCurrency   string   `json:"salary_currency"`
	Notes            string   `json:"notes"`
}

// Create makes the new contract the employee's current one and refreshes their
// contract_status in the same transaction.
func (s *Service) Create(ctx context.Context, tc tenant.Context, in CreateInput) (*View, error) {
	if err := validator.OneOf(in.ContractType, "contract type", models.EmploymentTypes...); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	start, err := models.ParseDate(in.StartDate)
	if err != nil {
		return nil, apperrors.InvalidInput("start date: " + err.Error())
	}
	var dates [3]*models.Date
	for i, raw := range []string{in.EndDate, in.RenewalDate, in.ProbationEndDate} {
		if dates[i], err = models.ParseOptionalDate(raw); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}
	end, renewal, probation := dates[0], dates[1], dates[2]
	if end != nil && end.Before(start.Time) {
		return nil, apperrors.InvalidInput("end date must not be before start date")
	}
	if in.WeeklyHours != nil && (*in.WeeklyHours < 0 || *in.WeeklyHours > 168) {
		return nil, apperrors.InvalidInput("weekly hours must be between 0 and 168")
	}
	if in.SalaryAmount != nil && *in.SalaryAmount < 0 {
		return nil, apperrors.InvalidInput("salary cannot be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.SalaryCurrency))
	if currency == "" {
		currency = "GBP"
	}

	now := s.now()
	c := &models.Contract{
		ID:               uuid.NewString(),
		CompanyID:        tc.CompanyID,
		EmployeeID:       in.EmployeeID,
		ContractType:     in.ContractType,
		StartDate:        start,
		EndDate:          end,
		RenewalDate:      renewal,
		ProbationEndDate: probation,
		WeeklyHours:      in.WeeklyHours,
		SalaryAmount:     in.SalaryAmount,
		SalaryCurrency:   currency,
		IsCurrent:        true,
		SigningStatus:    models.SigningUnsigned,
		CreatedAt:        now.Unix(),
		UpdatedAt:        now.Unix(),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		c.Notes = &notes
	}

	rollup := compliance.ContractRollup(compliance.ContractExpiryStatus(renewal, end, now))
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		emp, err := employees.Lookup(ctx, tx, tc.CompanyID, in.EmployeeID, true)
		if err != nil {
			return err
		}
		if emp == nil {
			return apperrors.NotFound("Employee not found")
		}
		if err := s.repo.UnflagCurrent(ctx, tx, tc.CompanyID, in.EmployeeID, now.Unix()); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, c); err != nil {
			return err
		}
		return s.employees.SetContractStatus(ctx, tx, tc.CompanyID, in.EmployeeID, rollup, now.Unix())
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "contract", c.ID, "Created contract for employee"))
	v := s.view(*c)
	return &v, nil
}

func (s *Service) get(ctx context.Context, tc tenant.Context, id string) (*models.Contract, error) {
	c, err := s.repo.Get(ctx, tc.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Contract not found")
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id string) (*View, error) {
	c, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*c)
	return &v, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context, employeeID string, currentOnly bool) ([]View, error) {
	list, err := s.repo.List(ctx, tc.CompanyID, employeeID, currentOnly)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(list))
	for _, c := range list {
		views = append(views, s.view(c))
	}
	return views, nil
}

type SigningLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func (s *Service) signingURL(token string) string {
	return s.cfg.AppURL + "/sign/" + token
}

// GenerateSigningLink is idempotent while the contract is pending: the existing token is returned.
func (s *Service) GenerateSigningLink(ctx context.Context, tc tenant.Context, id string) (*SigningLink, error) {
	c, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if c.SigningStatus == models.SigningSigned {
		return nil, apperrors.InvalidInput("Contract is already signed")
	}
	if c.SigningStatus == models.SigningPending && c.SignatureToken != nil {
		return &SigningLink{Token: *c.SignatureToken, URL: s.signingURL(*c.SignatureToken)}, nil
	}

	token := uuid.NewString()
	if err := s.repo.SetSigningToken(ctx, tc.CompanyID, id, token, s.now().Unix()); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "contract", id, "Generated signing link for contract"))
	return &SigningLink{Token: token, URL: s.signingURL(token)}, nil
}

func (s *Service) SigningQRCode(ctx context.Context, tc tenant.Context, id string, size int) ([]byte, error) {
	c, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if c.SignatureToken == nil || c.SigningStatus != models.SigningPending {
		return nil, apperrors.InvalidInput("Generate a signing link first")
	}
	png, err := qr.LinkPNG(s.signingURL(*c.SignatureToken), size)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return png, nil
}

// AttachDocument stores an uploaded contract document and replaces any previous one.
func (s *Service) AttachDocument(ctx context.Context, tc tenant.Context, id, filename string, size int64, r io.Reader) (*View, error) {
	c, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	ext, err := validator.DocumentExtension(filename, "pdf", "doc", "docx")
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if s.cfg.MaxUploadBytes > 0 && size > s.cfg.MaxUploadBytes {
		return nil, apperrors.InvalidInput("File too large")
	}

	obj, err := s.bucket.Put(tc.CompanyID, "contracts", ext, r)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	if err := s.repo.SetDocumentPath(ctx, tc.CompanyID, id, obj.Path, now); err != nil {
		if delErr := s.bucket.Delete(obj.Path); delErr != nil {
			log.Error().Err(delErr).Str("path", obj.Path).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	if c.DocumentPath != nil {
		if err := s.bucket.Delete(*c.DocumentPath); err != nil {
			log.Error().Err(err).Str("path", *c.DocumentPath).Msg("failed to remove replaced contract document")
		}
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "contract", id, "Uploaded contract document"))
	c.DocumentPath = &obj.Path
	c.UpdatedAt = now
	v := s.view(*c)
	return &v, nil
}

// RefreshRollups recomputes every active employee's contract_status from their
// current contract. Employees without one are non-compliant. Returns the number changed.
func (s *Service) RefreshRollups(ctx context.Context) (int, error) {
	now := s.now()
	rows, err := s.repo.Rollups(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, row := range rows {
		status := models.NonCompliant
		if row.ContractID != nil {
			status = compliance.ContractRollup(compliance.ContractExpiryStatus(row.RenewalDate, row.EndDate, now))
		}
		if status == row.ContractStatus {
			continue
		}
		if err := s.employees.SetContractStatus(ctx, s.db, row.CompanyID, row.EmployeeID, status, now.Unix()); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}
