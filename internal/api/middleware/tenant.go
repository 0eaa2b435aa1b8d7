package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/auth"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

type MemberLookup interface {
	GetByUserID(ctx context.Context, userID string) (*models.Member, error)
}

// TenantMiddleware resolves the caller's company membership. Users who have not
// onboarded yet are turned away with ONBOARDING_REQUIRED.
type TenantMiddleware struct {
	members MemberLookup
}

func NewTenantMiddleware(members MemberLookup) *TenantMiddleware {
	return &TenantMiddleware{members: members}
}

func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
			return
		}

		member, err := m.members.GetByUserID(r.Context(), claims.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("failed to load membership")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load company membership", nil)
			return
		}
		if member == nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeOnboardingRequired, "Complete onboarding to create or join a company", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Tenant, tenant.Context{
			CompanyID: member.CompanyID,
			UserID:    member.UserID,
			Role:      member.Role,
		})
		next(w, r.WithContext(ctx))
	}
}

// TenantFrom returns the tenant resolved by TenantMiddleware.
func TenantFrom(ctx context.Context) (tenant.Context, bool) {
	tc, ok := ctx.Value(apiContext.Tenant).(tenant.Context)
	return tc, ok
}
