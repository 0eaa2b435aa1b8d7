// Package policies manages a company's policy library, its distribution links and
// employee acknowledgements.
package policies

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/qr"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/storage"
	"complyhr/internal/platform/tenant"
)

type Config struct {
	AppURL         string
	MaxUploadBytes int64
}

type Service struct {
	db        *sqlx.DB
	repo      *Repository
	companies *repositories.CompanyRepository
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
		companies: repositories.NewCompanyRepository(db),
		audit:     auditLog,
		bucket:    bucket,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) company(ctx context.Context, tc tenant.Context) (*models.Company, error) {
	c, err := s.companies.GetByID(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Company not found")
	}
	return c, nil
}

// Templates lists the canonical templates that apply to the tenant's sector.
func (s *Service) Templates(ctx context.Context, tc tenant.Context) ([]models.PolicyTemplate, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.Templates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PolicyTemplate, 0, len(all))
	for _, t := range all {
		if t.AppliesTo(c.Sector) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SeedTemplate upserts a template by id; used by the migrate seed command.
func (s *Service) SeedTemplate(ctx context.Context, t models.PolicyTemplate) error {
	now := s.now().Unix()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Version == "" {
		t.Version = "1.0"
	}
	return s.repo.UpsertTemplate(ctx, &t)
}

func (s *Service) checkQuota(ctx context.Context, c *models.Company) error {
	if c.SubscriptionTier != models.TierStarter {
		return nil
	}
	n, err := s.repo.CountNonArchived(ctx, c.ID)
	if err != nil {
		return err
	}
	if n >= StarterPolicyLimit {
		return apperrors.QuotaExceeded("The Starter plan allows up to 10 policies. Archive a policy or upgrade to add more.")
	}
	return nil
}

func (s *Service) Adopt(ctx context.Context, tc tenant.Context, templateID string) (*models.CompanyPolicy, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.NotFound("Template not found")
	}
	if err := s.checkQuota(ctx, c); err != nil {
		return nil, err
	}

	now := s.now().Unix()
	content := t.Content
	p := &models.CompanyPolicy{
		ID:                      uuid.NewString(),
		CompanyID:               tc.CompanyID,
		TemplateID:              &t.ID,
		Title:                   t.Title,
		Description:             t.Description,
		Content:                 &content,
		Category:                t.Category,
		Status:                  models.PolicyDraft,
		Version:                 t.Version,
		RequiresAcknowledgement: true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "company_policy", p.ID, "Adopted policy template: "+t.Title))
	return p, nil
}

type UploadInput struct {
	Title       string
	Description string
	Category    string
	FileName    string
	Size        int64
}

// Upload stores a PDF as a new draft policy.
func (s *Service) Upload(ctx context.Context, tc tenant.Context, in UploadInput, r io.Reader) (*models.CompanyPolicy, error) {
	ext, err := validator.DocumentExtension(in.FileName, "pdf")
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if s.cfg.MaxUploadBytes > 0 && in.Size > s.cfg.MaxUploadBytes {
		return nil, apperrors.InvalidInput("File too large")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(path.Base(in.FileName), path.Ext(in.FileName))
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "general"
	}
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, c); err != nil {
		return nil, err
	}

	obj, err := s.bucket.Put(tc.CompanyID, "policies", ext, r)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	name := path.Base(in.FileName)
	p := &models.CompanyPolicy{
		ID:                      uuid.NewString(),
		CompanyID:               tc.CompanyID,
		Title:                   title,
		FilePath:                &obj.Path,
		FileName:                &name,
		FileSizeBytes:           &obj.Size,
		Category:                category,
		Status:                  models.PolicyDraft,
		Version:                 "1.0",
		RequiresAcknowledgement: true,
		UploadedBy:              tc.Actor(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		p.Description = &d
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		if delErr := s.bucket.Delete(obj.Path); delErr != nil {
			log.Error().Err(delErr).Str("path", obj.Path).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "company_policy", p.ID, "Uploaded policy: "+title))
	return p, nil
}

func (s *Service) get(ctx context.Context, tc tenant.Context, id string) (*models.CompanyPolicy, error) {
	p, err := s.repo.Get(ctx, tc.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("Policy not found")
	}
	return p, nil
}

// View adds a short-lived document link for uploaded policies.
type View struct {
	models.CompanyPolicy
	DocumentURL string `json:"document_url,omitempty"`
	AccessURL   string `json:"access_url,omitempty"`
}

func (s *Service) view(p models.CompanyPolicy) View {
	v := View{CompanyPolicy: p}
	if p.FilePath != nil {
		v.DocumentURL = s.bucket.SignedURL(*p.FilePath, s.now())
	}
	if p.AccessToken != nil && p.Status == models.PolicyActive {
		v.AccessURL = s.accessURL(*p.AccessToken)
	}
	return v
}

func (s *Service) accessURL(token string) string {
	return s.cfg.AppURL + "/policy/" + token
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id string) (*View, error) {
	p, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *Service) List(ctx context.Context, tc tenant.Context, status string) ([]View, error) {
	list, err := s.repo.List(ctx, tc.CompanyID, status)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(list))
	for _, p := range list {
		views = append(views, s.view(p))
	}
	return views, nil
}

type UpdateInput struct {
	Title                   *string `json:"title"`
	Description             *string `json:"description"`
	Category                *string `json:"category"`
	Version                 *string `json:"version"`
	ReviewDate              *string `json:"review_date"`
	RequiresAcknowledgement *bool   `json:"requires_acknowledgement"`
}

func (s *Service) Update(ctx context.Context, tc tenant.Context, id string, in UpdateInput) (*View, error) {
	p, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("title is required")
		}
		p.Title = title
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			p.Description = &d
		} else {
			p.Description = nil
		}
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Version != nil && strings.TrimSpace(*in.Version) != "" {
		p.Version = strings.TrimSpace(*in.Version)
	}
	if in.ReviewDate != nil {
		if p.ReviewDate, err = models.ParseOptionalDate(*in.ReviewDate); err != nil {
			return nil, apperrors.InvalidInput("review date: " + err.Error())
		}
	}
	if in.RequiresAcknowledgement != nil {
		p.RequiresAcknowledgement = *in.RequiresAcknowledgement
	}
	p.UpdatedAt = s.now().Unix()

	if err := s.repo.UpdateDetails(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "company_policy", id, "Updated policy details"))
	v := s.view(*p)
	return &v, nil
}

func (s *Service) transition(ctx context.Context, tc tenant.Context, id, from, to string, apply func(p *models.CompanyPolicy, now int64)) (*View, error) {
	p, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if p.Status != from {
		return nil, apperrors.InvalidInput("Cannot change policy status from " + p.Status + " to " + to)
	}

	now := s.now().Unix()
	p.Status = to
	p.UpdatedAt = now
	apply(p, now)

	changed, err := s.repo.Transition(ctx, p, from)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperrors.InvalidInput("Policy status changed concurrently, reload and try again")
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "company_policy", id, "Updated policy status to "+to))
	v := s.view(*p)
	return &v, nil
}

// Activate publishes a draft. An access token is generated the first time.
func (s *Service) Activate(ctx context.Context, tc tenant.Context, id string) (*View, error) {
	return s.transition(ctx, tc, id, models.PolicyDraft, models.PolicyActive, func(p *models.CompanyPolicy, now int64) {
		if p.AccessToken == nil {
			token := uuid.NewString()
			p.AccessToken = &token
		}
		p.ActivatedAt = &now
		p.ActivatedBy = tc.Actor()
	})
}

func (s *Service) Archive(ctx context.Context, tc tenant.Context, id string) (*View, error) {
	return s.transition(ctx, tc, id, models.PolicyActive, models.PolicyArchived, func(p *models.CompanyPolicy, now int64) {
		p.ArchivedAt = &now
		p.ArchivedBy = tc.Actor()
	})
}

// Reactivate returns an archived policy to draft, subject to the starter quota.
func (s *Service) Reactivate(ctx context.Context, tc tenant.Context, id string) (*View, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, c); err != nil {
		return nil, err
	}
	return s.transition(ctx, tc, id, models.PolicyArchived, models.PolicyDraft, func(p *models.CompanyPolicy, now int64) {
		p.ArchivedAt = nil
		p.ArchivedBy = nil
	})
}

type AccessLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// RegenerateToken replaces the access token so previously shared links stop resolving.
func (s *Service) RegenerateToken(ctx context.Context, tc tenant.Context, id string) (*AccessLink, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	if !canDistribute(c.SubscriptionTier) {
		return nil, upgradeRequired("Policy distribution", models.TierProfessional)
	}
	p, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PolicyArchived {
		return nil, apperrors.InvalidInput("Archived policies cannot be shared")
	}

	token := uuid.NewString()
	if err := s.repo.SetAccessToken(ctx, tc.CompanyID, id, token, s.now().Unix()); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "company_policy", id, "Regenerated policy access link"))
	return &AccessLink{Token: token, URL: s.accessURL(token)}, nil
}

func (s *Service) AccessQRCode(ctx context.Context, tc tenant.Context, id string, size int) ([]byte, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	if !canDistribute(c.SubscriptionTier) {
		return nil, upgradeRequired("Policy distribution", models.TierProfessional)
	}
	p, err := s.get(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PolicyActive || p.AccessToken == nil {
		return nil, apperrors.InvalidInput("Only active policies can be shared")
	}
	png, err := qr.LinkPNG(s.accessURL(*p.AccessToken), size)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return png, nil
}

func (s *Service) ListAcknowledgements(ctx context.Context, tc tenant.Context, id string) ([]models.PolicyAcknowledgement, error) {
	c, err := s.company(ctx, tc)
	if err != nil {
		return nil, err
	}
	if !canTrackAcknowledgements(c.SubscriptionTier) {
		return nil, upgradeRequired("Acknowledgement tracking", models.TierProfessional)
	}
	if _, err := s.get(ctx, tc, id); err != nil {
		return nil, err
	}
	return s.repo.Acknowledgements(ctx, id)
}

// OverdueReviews counts active policies past their review date.
func (s *Service) OverdueReviews(ctx context.Context, tc tenant.Context) (int, error) {
	return s.repo.OverdueReviews(ctx, tc.CompanyID, models.DateOf(s.now().UTC()))
}
