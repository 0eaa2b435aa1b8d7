package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/pkg/validator"
	"complyhr/internal/platform/auth"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
)

type AuthHandler struct {
	db         *sqlx.DB
	userRepo   *repositories.UserRepository
	memberRepo *repositories.MemberRepository
	inviteRepo *repositories.InviteRepository
	tokenSvc   *auth.TokenService
}

func NewAuthHandler(db *sqlx.DB, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		db:         db,
		userRepo:   repositories.NewUserRepository(db),
		memberRepo: repositories.NewMemberRepository(db),
		inviteRepo: repositories.NewInviteRepository(db),
		tokenSvc:   tokenSvc,
	}
}

type SignupRequest struct {
	InviteCode string `json:"invite_code"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
}

type AuthResponse struct {
	User         *models.User   `json:"user"`
	Member       *models.Member `json:"member,omitempty"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, user *models.User, member *models.Member) {
	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	writeJSON(w, status, AuthResponse{User: user, Member: member, AccessToken: accessToken, RefreshToken: refreshToken})
}

// Signup creates an account. With an invite code the user joins the inviting
// company in the same transaction; without one they go on to onboarding.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Email(email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	ctx := r.Context()
	existing, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil {
		respond(w, r, err)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
		return
	}

	now := time.Now().Unix()
	var invite *models.Invite
	if code := strings.TrimSpace(req.InviteCode); code != "" {
		invite, err = h.inviteRepo.GetByCode(ctx, code)
		if err != nil {
			respond(w, r, err)
			return
		}
		if invite == nil || !invite.Usable(now) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid or expired invite code", nil)
			return
		}
		if invite.Email != "" && !strings.EqualFold(invite.Email, email) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invite was issued to a different email address", nil)
			return
		}
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(req.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var member *models.Member

	err = database.WithTx(ctx, h.db, func(tx *sqlx.Tx) error {
		if err := h.userRepo.CreateTx(ctx, tx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.Conflict("User already exists")
			}
			return err
		}
		if invite == nil {
			return nil
		}
		member = &models.Member{
			ID:        uuid.NewString(),
			CompanyID: invite.CompanyID,
			UserID:    user.ID,
			Role:      invite.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.memberRepo.CreateTx(ctx, tx, member); err != nil {
			return err
		}
		claimed, err := h.inviteRepo.IncrementUsesTx(ctx, tx, invite.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return errors.InvalidInput("Invalid or expired invite code")
		}
		return nil
	})
	if err != nil {
		respond(w, r, err)
		return
	}

	h.issue(w, http.StatusCreated, user, member)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respond(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := h.userRepo.UpdateLastLogin(ctx, user.ID, time.Now().Unix()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	member, err := h.memberRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respond(w, r, err)
		return
	}

	h.issue(w, http.StatusOK, user, member)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	userID, err := h.tokenSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid refresh token", nil)
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respond(w, r, err)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

// Me reports the caller and, once onboarded, their membership.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	user, err := h.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respond(w, r, err)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
		return
	}
	member, err := h.memberRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respond(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":                user,
		"member":              member,
		"onboarding_required": member == nil,
	})
}
