package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/engine/invites"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/auth"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/tenant"
)

type CompanyHandler struct {
	db          *sqlx.DB
	companyRepo *repositories.CompanyRepository
	memberRepo  *repositories.MemberRepository
	inviteSvc   *invites.Service
	audit       *audit.Logger
	trialDays   int
}

func NewCompanyHandler(db *sqlx.DB, inviteSvc *invites.Service, auditLog *audit.Logger, trialDays int) *CompanyHandler {
	return &CompanyHandler{
		db:          db,
		companyRepo: repositories.NewCompanyRepository(db),
		memberRepo:  repositories.NewMemberRepository(db),
		inviteSvc:   inviteSvc,
		audit:       auditLog,
		trialDays:   trialDays,
	}
}

type OnboardingRequest struct {
	CompanyName        string `json:"company_name"`
	Sector             string `json:"sector"`
	EmployeeCountRange string `json:"employee_count_range"`
}

// Onboard creates the caller's company on a starter trial and makes them its owner.
func (h *CompanyHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req OnboardingRequest
	if !decode(w, r, &req) {
		return
	}
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validator.Required(req.CompanyName, "company_name"); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.OneOf(req.Sector, "sector", models.Sectors...); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if req.EmployeeCountRange == "" {
		req.EmployeeCountRange = "1-10"
	}

	ctx := r.Context()
	existing, err := h.memberRepo.GetByUserID(ctx, claims.UserID)
	if err != nil {
		respond(w, r, err)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already belongs to a company", nil)
		return
	}

	now := time.Now()
	trialEnds := now.AddDate(0, 0, h.trialDays).Unix()
	company := &models.Company{
		ID:                 uuid.NewString(),
		Name:               req.CompanyName,
		Sector:             req.Sector,
		EmployeeCountRange: req.EmployeeCountRange,
		SubscriptionTier:   models.TierStarter,
		SubscriptionStatus: models.StatusTrialing,
		TrialEndsAt:        &trialEnds,
		CreatedAt:          now.Unix(),
		UpdatedAt:          now.Unix(),
	}
	member := &models.Member{
		ID:        uuid.NewString(),
		CompanyID: company.ID,
		UserID:    claims.UserID,
		Role:      models.RoleOwner,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	err = database.WithTx(ctx, h.db, func(tx *sqlx.Tx) error {
		if err := h.companyRepo.CreateTx(ctx, tx, company); err != nil {
			return err
		}
		if err := h.memberRepo.CreateTx(ctx, tx, member); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.Conflict("User already belongs to a company")
			}
			return err
		}
		return nil
	})
	if err != nil {
		respond(w, r, err)
		return
	}

	tc := tenant.Context{CompanyID: company.ID, UserID: claims.UserID, Role: member.Role}
	h.audit.Record(ctx, audit.ByUser(tc, audit.ActionCreate, "company", company.ID, "Created company: "+company.Name))

	writeJSON(w, http.StatusCreated, map[string]interface{}{"company": company, "member": member})
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	tc := tenantOf(r)
	company, err := h.companyRepo.GetByID(r.Context(), tc.CompanyID)
	if err != nil {
		respond(w, r, err)
		return
	}
	if company == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Company not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

type UpdateCompanyRequest struct {
	Name               *string `json:"name"`
	Sector             *string `json:"sector"`
	EmployeeCountRange *string `json:"employee_count_range"`
	AddressLine1       *string `json:"address_line1"`
	AddressLine2       *string `json:"address_line2"`
	City               *string `json:"city"`
	Postcode           *string `json:"postcode"`
	Phone              *string `json:"phone"`
	Website            *string `json:"website"`
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	tc := tenantOf(r)
	var req UpdateCompanyRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	company, err := h.companyRepo.GetByID(ctx, tc.CompanyID)
	if err != nil {
		respond(w, r, err)
		return
	}
	if company == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Company not found", nil)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "name is required", nil)
			return
		}
		company.Name = name
	}
	if req.Sector != nil {
		if err := validator.OneOf(*req.Sector, "sector", models.Sectors...); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
			return
		}
		company.Sector = *req.Sector
	}
	if req.EmployeeCountRange != nil {
		company.EmployeeCountRange = *req.EmployeeCountRange
	}
	for dst, src := range map[**string]*string{
		&company.AddressLine1: req.AddressLine1,
		&company.AddressLine2: req.AddressLine2,
		&company.City:         req.City,
		&company.Postcode:     req.Postcode,
		&company.Phone:        req.Phone,
		&company.Website:      req.Website,
	} {
		if src != nil {
			*dst = src
		}
	}

	if err := h.companyRepo.UpdateSettings(ctx, company); err != nil {
		respond(w, r, err)
		return
	}
	h.audit.Record(ctx, audit.ByUser(tc, audit.ActionUpdate, "company", company.ID, "Updated company settings"))

	writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var in invites.CreateInput
	if !decode(w, r, &in) {
		return
	}
	invite, err := h.inviteSvc.Create(r.Context(), tenantOf(r), in)
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

func (h *CompanyHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	list, err := h.inviteSvc.List(r.Context(), tenantOf(r))
	if err != nil {
		respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
