package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"complyhr/internal/engine/alerts"
	"complyhr/internal/engine/policies"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/models"
)

type seedAlert struct {
	models.LegalAlert `yaml:",inline"`
	EffectiveDate     string `yaml:"effective_date"`
}

type seedFile struct {
	PolicyTemplates []models.PolicyTemplate `yaml:"policy_templates"`
	LegalAlerts     []seedAlert             `yaml:"legal_alerts"`
}

func loadSeed(r io.Reader) (*seedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed seedFile
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// applySeed upserts every template and alert by id, so re-running a seed file is safe.
func applySeed(ctx context.Context, db *sqlx.DB, seed *seedFile) (templates, alertCount int, err error) {
	auditLog := audit.NewLogger(db)
	policySvc := policies.NewService(db, auditLog, nil, policies.Config{})
	alertSvc := alerts.NewService(db, auditLog)

	for _, t := range seed.PolicyTemplates {
		if err := policySvc.SeedTemplate(ctx, t); err != nil {
			return templates, alertCount, fmt.Errorf("policy template %q: %w", t.ID, err)
		}
		templates++
	}
	for _, a := range seed.LegalAlerts {
		if err := alertSvc.Seed(ctx, a.LegalAlert, a.EffectiveDate); err != nil {
			return templates, alertCount, fmt.Errorf("legal alert %q: %w", a.ID, err)
		}
		alertCount++
	}
	return templates, alertCount, nil
}
