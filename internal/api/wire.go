package api

import (
	"time"

	"github.com/jmoiron/sqlx"

	"complyhr/internal/api/handlers"
	"complyhr/internal/api/middleware"
	"complyhr/internal/engine/alerts"
	"complyhr/internal/engine/billing"
	"complyhr/internal/engine/cases"
	"complyhr/internal/engine/contracts"
	"complyhr/internal/engine/dashboard"
	"complyhr/internal/engine/employees"
	"complyhr/internal/engine/invites"
	"complyhr/internal/engine/policies"
	"complyhr/internal/engine/rtw"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/auth"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/storage"
)

const memberCacheTTL = 30 * time.Second

// Wire builds every service and handler the router needs from one database,
// document bucket and payment provider.
func Wire(db *sqlx.DB, cfg *config.Config, bucket *storage.Bucket, provider billing.Provider, limiter *middleware.RateLimiter) *Dependencies {
	maxUpload := cfg.Storage.MaxUploadMB << 20

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(db)
	employeeSvc := employees.NewService(db, auditLog)
	rtwSvc := rtw.NewService(db, auditLog)
	contractSvc := contracts.NewService(db, auditLog, bucket, contracts.Config{AppURL: cfg.Domains.AppURL, MaxUploadBytes: maxUpload})
	policySvc := policies.NewService(db, auditLog, bucket, policies.Config{AppURL: cfg.Domains.AppURL, MaxUploadBytes: maxUpload})
	caseSvc := cases.NewService(db, auditLog)
	alertSvc := alerts.NewService(db, auditLog)
	billingSvc := billing.NewService(db, provider, cfg.Billing, cfg.Domains.AppURL)
	inviteSvc := invites.NewService(db, auditLog)
	dashboardSvc := dashboard.NewService(db, policySvc, alertSvc)

	return &Dependencies{
		AuthHandler:      handlers.NewAuthHandler(db, tokenSvc),
		CompanyHandler:   handlers.NewCompanyHandler(db, inviteSvc, auditLog, cfg.Company.TrialDays),
		EmployeeHandler:  handlers.NewEmployeeHandler(employeeSvc, rtwSvc),
		ContractHandler:  handlers.NewContractHandler(contractSvc, maxUpload),
		PolicyHandler:    handlers.NewPolicyHandler(policySvc, maxUpload),
		CaseHandler:      handlers.NewCaseHandler(caseSvc),
		AlertHandler:     handlers.NewAlertHandler(alertSvc),
		AuditHandler:     handlers.NewAuditHandler(auditLog),
		DashboardHandler: handlers.NewDashboardHandler(dashboardSvc),
		BillingHandler:   handlers.NewBillingHandler(billingSvc),
		PublicHandler:    handlers.NewPublicHandler(policySvc, contractSvc),
		FilesHandler:     handlers.NewFilesHandler(bucket),
		HealthHandler:    handlers.NewHealthHandler(db),
		MetricsHandler:   handlers.NewMetricsHandler(),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc),
		TenantMiddleware: middleware.NewTenantMiddleware(middleware.NewMemberCache(repositories.NewMemberRepository(db), memberCacheTTL)),
		RateLimiter:      limiter,
		RateLimit:        cfg.RateLimit,
		CORS:             cfg.CORS,
	}
}
