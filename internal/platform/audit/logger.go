package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"complyhr/internal/platform/models"
	"complyhr/internal/platform/tenant"
)

const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionApprove      = "approve"
	ActionCompleteStep = "complete_step"
)

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "complyhr_audit_write_failures_total",
	Help: "Audit log inserts that failed after the primary write had committed.",
})

type Log struct {
	ID          string         `db:"id" json:"id"`
	CompanyID   string         `db:"company_id" json:"company_id"`
	UserID      *string        `db:"user_id" json:"user_id"`
	Action      string         `db:"action" json:"action"`
	EntityType  string         `db:"entity_type" json:"entity_type"`
	EntityID    *string        `db:"entity_id" json:"entity_id"`
	Description string         `db:"description" json:"description"`
	Metadata    models.JSONMap `db:"metadata" json:"metadata"`
	IPAddress   *string        `db:"ip_address" json:"ip_address"`
	CreatedAt   int64          `db:"created_at" json:"created_at"`
}

// Entry is one mutation to record. UserID nil marks a public actor (token holder).
type Entry struct {
	CompanyID   string
	UserID      *string
	Action      string
	EntityType  string
	EntityID    string
	Description string
	Metadata    map[string]interface{}
	IPAddress   string
}

// ByUser fills company and actor from the caller's tenant context.
func ByUser(tc tenant.Context, action, entityType, entityID, description string) Entry {
	return Entry{
		CompanyID:   tc.CompanyID,
		UserID:      tc.Actor(),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}
}

type Logger struct {
	db *sqlx.DB
}

func NewLogger(db *sqlx.DB) *Logger {
	return &Logger{db: db}
}

// Record appends an entry after the primary write has committed. Failures are
// logged and counted, never returned.
func (l *Logger) Record(ctx context.Context, e Entry) {
	ctx = context.WithoutCancel(ctx)

	var entityID, ip *string
	if e.EntityID != "" {
		entityID = &e.EntityID
	}
	if e.IPAddress != "" {
		ip = &e.IPAddress
	}

	// v7 ids sort by creation, which orders entries written within the same second.
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	row := Log{
		ID:          id.String(),
		CompanyID:   e.CompanyID,
		UserID:      e.UserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    entityID,
		Description: e.Description,
		Metadata:    models.JSONMap(e.Metadata),
		IPAddress:   ip,
		CreatedAt:   time.Now().Unix(),
	}

	_, err = l.db.NamedExecContext(ctx, `
		INSERT INTO audit_logs (id, company_id, user_id, action, entity_type, entity_id, description, metadata, ip_address, created_at)
		VALUES (:id, :company_id, :user_id, :action, :entity_type, :entity_id, :description, :metadata, :ip_address, :created_at)
	`, row)
	if err != nil {
		writeFailures.Inc()
		log.Error().Err(err).
			Str("company_id", e.CompanyID).
			Str("entity_type", e.EntityType).
			Str("entity_id", e.EntityID).
			Str("action", e.Action).
			Msg("audit log write failed")
	}
}

type Filter struct {
	EntityType string
	Limit      int
	Offset     int
}

// List returns a company's audit trail, newest first.
func (l *Logger) List(ctx context.Context, companyID string, f Filter) ([]Log, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := `SELECT * FROM audit_logs WHERE company_id = ?`
	args := []interface{}{companyID}
	if f.EntityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, f.EntityType)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	logs := []Log{}
	if err := l.db.SelectContext(ctx, &logs, l.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return logs, nil
}
