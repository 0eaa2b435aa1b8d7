package api

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/api/handlers"
	"complyhr/internal/api/middleware"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/models"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	CompanyHandler   *handlers.CompanyHandler
	EmployeeHandler  *handlers.EmployeeHandler
	ContractHandler  *handlers.ContractHandler
	PolicyHandler    *handlers.PolicyHandler
	CaseHandler      *handlers.CaseHandler
	AlertHandler     *handlers.AlertHandler
	AuditHandler     *handlers.AuditHandler
	DashboardHandler *handlers.DashboardHandler
	BillingHandler   *handlers.BillingHandler
	PublicHandler    *handlers.PublicHandler
	FilesHandler     *handlers.FilesHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
	RateLimiter      *middleware.RateLimiter
	RateLimit        config.RateLimitConfig
	CORS             config.CORSConfig
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	authMid := deps.AuthMiddleware.Handle
	tenantMid := deps.TenantMiddleware.Handle
	publicLimit := deps.RateLimiter.Limit("public", deps.RateLimit.PublicPerMinute)
	writeLimit := deps.RateLimiter.Limit("api", deps.RateLimit.APIWritePerMinute)
	admin := requireRole(models.RoleOwner, models.RoleAdmin)

	// read: authenticated member of a company
	read := func(path string, h http.HandlerFunc) httprouter.Handle {
		return chain(path, h, authMid, tenantMid)
	}
	// write: any member except viewers
	write := func(path string, h http.HandlerFunc) httprouter.Handle {
		return chain(path, h, authMid, tenantMid, requireWriter, writeLimit)
	}
	// manage: owners and admins only
	manage := func(path string, h http.HandlerFunc) httprouter.Handle {
		return chain(path, h, authMid, tenantMid, admin, writeLimit)
	}

	router.GET("/health", wrap("/health", deps.HealthHandler.Check))
	router.GET("/metrics", wrap("/metrics", deps.MetricsHandler.Export))
	router.GET("/files/*path", chain("/files/*path", deps.FilesHandler.Serve, publicLimit))

	// Authentication routes
	router.POST("/api/v1/auth/signup", chain("/api/v1/auth/signup", deps.AuthHandler.Signup, publicLimit))
	router.POST("/api/v1/auth/login", chain("/api/v1/auth/login", deps.AuthHandler.Login, publicLimit))
	router.POST("/api/v1/auth/refresh", chain("/api/v1/auth/refresh", deps.AuthHandler.Refresh, publicLimit))
	router.GET("/api/v1/me", chain("/api/v1/me", deps.AuthHandler.Me, authMid))
	router.POST("/api/v1/onboarding", chain("/api/v1/onboarding", deps.CompanyHandler.Onboard, authMid))

	// Company settings and invites
	router.GET("/api/v1/company", read("/api/v1/company", deps.CompanyHandler.Get))
	router.PATCH("/api/v1/company", manage("/api/v1/company", deps.CompanyHandler.Update))
	router.POST("/api/v1/invites", manage("/api/v1/invites", deps.CompanyHandler.CreateInvite))
	router.GET("/api/v1/invites", chain("/api/v1/invites", deps.CompanyHandler.ListInvites, authMid, tenantMid, admin))

	// Employees and right-to-work checks
	router.POST("/api/v1/employees", write("/api/v1/employees", deps.EmployeeHandler.Create))
	router.GET("/api/v1/employees", read("/api/v1/employees", deps.EmployeeHandler.List))
	router.GET("/api/v1/employees/:id", read("/api/v1/employees/:id", deps.EmployeeHandler.Get))
	router.PATCH("/api/v1/employees/:id", write("/api/v1/employees/:id", deps.EmployeeHandler.Update))
	router.DELETE("/api/v1/employees/:id", write("/api/v1/employees/:id", deps.EmployeeHandler.Deactivate))
	router.POST("/api/v1/rtw-checks", write("/api/v1/rtw-checks", deps.EmployeeHandler.CreateRTWCheck))
	router.GET("/api/v1/rtw-checks", read("/api/v1/rtw-checks", deps.EmployeeHandler.ListRTWChecks))
	router.POST("/api/v1/holidays/calculate", read("/api/v1/holidays/calculate", deps.EmployeeHandler.CalculateHoliday))

	// Contracts
	router.POST("/api/v1/contracts", write("/api/v1/contracts", deps.ContractHandler.Create))
	router.GET("/api/v1/contracts", read("/api/v1/contracts", deps.ContractHandler.List))
	router.GET("/api/v1/contracts/:id", read("/api/v1/contracts/:id", deps.ContractHandler.Get))
	router.POST("/api/v1/contracts/:id/signing-link", write("/api/v1/contracts/:id/signing-link", deps.ContractHandler.SigningLink))
	router.GET("/api/v1/contracts/:id/qr", read("/api/v1/contracts/:id/qr", deps.ContractHandler.QRCode))
	router.POST("/api/v1/contracts/:id/document", write("/api/v1/contracts/:id/document", deps.ContractHandler.UploadDocument))

	// Policies
	router.GET("/api/v1/policy-templates", read("/api/v1/policy-templates", deps.PolicyHandler.Templates))
	router.POST("/api/v1/policy-templates/:id/adopt", write("/api/v1/policy-templates/:id/adopt", deps.PolicyHandler.Adopt))
	router.POST("/api/v1/policies", write("/api/v1/policies", deps.PolicyHandler.Upload))
	router.GET("/api/v1/policies", read("/api/v1/policies", deps.PolicyHandler.List))
	router.GET("/api/v1/policies/:id", read("/api/v1/policies/:id", deps.PolicyHandler.Get))
	router.PATCH("/api/v1/policies/:id", write("/api/v1/policies/:id", deps.PolicyHandler.Update))
	router.POST("/api/v1/policies/:id/activate", write("/api/v1/policies/:id/activate", deps.PolicyHandler.Activate))
	router.POST("/api/v1/policies/:id/archive", write("/api/v1/policies/:id/archive", deps.PolicyHandler.Archive))
	router.POST("/api/v1/policies/:id/reactivate", write("/api/v1/policies/:id/reactivate", deps.PolicyHandler.Reactivate))
	router.POST("/api/v1/policies/:id/regenerate-token", write("/api/v1/policies/:id/regenerate-token", deps.PolicyHandler.RegenerateToken))
	router.GET("/api/v1/policies/:id/qr", read("/api/v1/policies/:id/qr", deps.PolicyHandler.QRCode))
	router.GET("/api/v1/policies/:id/acknowledgements", read("/api/v1/policies/:id/acknowledgements", deps.PolicyHandler.Acknowledgements))
	router.GET("/api/v1/policies/:id/acknowledgements/export", read("/api/v1/policies/:id/acknowledgements/export", deps.PolicyHandler.ExportAcknowledgements))

	// Disciplinary and grievance cases
	router.POST("/api/v1/cases", write("/api/v1/cases", deps.CaseHandler.Create))
	router.GET("/api/v1/cases", read("/api/v1/cases", deps.CaseHandler.List))
	router.GET("/api/v1/cases/:id", read("/api/v1/cases/:id", deps.CaseHandler.Get))
	router.POST("/api/v1/cases/:id/steps/:stepId/complete", write("/api/v1/cases/:id/steps/:stepId/complete", deps.CaseHandler.CompleteStep))
	router.POST("/api/v1/cases/:id/close", write("/api/v1/cases/:id/close", deps.CaseHandler.Close))
	router.PATCH("/api/v1/cases/:id/status", write("/api/v1/cases/:id/status", deps.CaseHandler.UpdateStatus))

	// Legal alerts, audit trail and dashboard
	router.GET("/api/v1/alerts", read("/api/v1/alerts", deps.AlertHandler.List))
	router.POST("/api/v1/alerts/:id/acknowledge", write("/api/v1/alerts/:id/acknowledge", deps.AlertHandler.Acknowledge))
	router.GET("/api/v1/audit", read("/api/v1/audit", deps.AuditHandler.List))
	router.GET("/api/v1/dashboard", read("/api/v1/dashboard", deps.DashboardHandler.Summary))

	// Billing
	router.POST("/api/v1/billing/checkout", manage("/api/v1/billing/checkout", deps.BillingHandler.Checkout))
	router.POST("/api/v1/billing/portal", manage("/api/v1/billing/portal", deps.BillingHandler.Portal))
	router.POST("/api/stripe/webhook", wrap("/api/stripe/webhook", deps.BillingHandler.Webhook))

	// Token-gated public pages
	router.GET("/api/policy/:token", chain("/api/policy/:token", deps.PublicHandler.GetPolicy, publicLimit))
	router.POST("/api/policy/:token/acknowledge", chain("/api/policy/:token/acknowledge", deps.PublicHandler.AcknowledgePolicy, publicLimit))
	router.GET("/api/sign/:token", chain("/api/sign/:token", deps.PublicHandler.GetContract, publicLimit))
	router.POST("/api/sign/:token/submit", chain("/api/sign/:token/submit", deps.PublicHandler.SignContract, publicLimit))

	c := cors.New(cors.Options{
		AllowedOrigins:   deps.CORS.AllowedOrigins,
		AllowedMethods:   deps.CORS.AllowedMethods,
		AllowedHeaders:   deps.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           deps.CORS.MaxAge,
	})
	return c.Handler(router)
}

// chain applies middlewares outermost first and instruments the result under route.
func chain(route string, handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(route, handler)
}

// wrap converts an http.HandlerFunc to an httprouter.Handle, exposing the path params via context.
func wrap(route string, handler http.HandlerFunc) httprouter.Handle {
	instrumented := middleware.Instrument(route, handler)
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		instrumented(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tc, ok := middleware.TenantFrom(r.Context())
			if !ok {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeOnboardingRequired, "Complete onboarding first", nil)
				return
			}

			allowed := false
			for _, role := range roles {
				if tc.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}

func requireWriter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := middleware.TenantFrom(r.Context())
		if !ok || !tc.CanWrite() {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Read-only access", nil)
			return
		}
		next(w, r)
	}
}
