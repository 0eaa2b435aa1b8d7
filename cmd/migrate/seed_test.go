package main

import (
	"context"
	"strings"
	"testing"

	"complyhr/internal/platform/testdb"
)

const sampleSeed = `
policy_templates:
  - id: tpl-disciplinary
    title: Disciplinary Policy
    category: conduct
    content: "# Disciplinary Policy"
    applicable_sectors: []
    is_mandatory: true
    version: "2.0"
  - id: tpl-medication
    title: Medication Handling
    category: health_safety
    content: "# Medication"
    applicable_sectors: [care_homes]
legal_alerts:
  - id: alert-nmw-2026
    title: National Minimum Wage increase
    summary: New rates apply from April.
    severity: warning
    effective_date: "2026-04-01"
    is_active: true
`

func TestSeedIsIdempotent(t *testing.T) {
	db := testdb.New(t)
	seed, err := loadSeed(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatalf("loadSeed: %v", err)
	}
	if len(seed.PolicyTemplates) != 2 || len(seed.LegalAlerts) != 1 {
		t.Fatalf("parsed %d templates, %d alerts", len(seed.PolicyTemplates), len(seed.LegalAlerts))
	}
	if seed.LegalAlerts[0].EffectiveDate != "2026-04-01" || !seed.LegalAlerts[0].IsActive {
		t.Errorf("unexpected alert %+v", seed.LegalAlerts[0])
	}

	for i := 0; i < 2; i++ {
		templates, alerts, err := applySeed(context.Background(), db, seed)
		if err != nil {
			t.Fatalf("applySeed run %d: %v", i, err)
		}
		if templates != 2 || alerts != 1 {
			t.Errorf("run %d: applied %d templates, %d alerts", i, templates, alerts)
		}
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM policy_templates`); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("policy_templates = %d, want 2", count)
	}

	var version string
	if err := db.Get(&version, `SELECT version FROM policy_templates WHERE id = 'tpl-medication'`); err != nil {
		t.Fatal(err)
	}
	if version != "1.0" {
		t.Errorf("default version = %q, want 1.0", version)
	}
}

func TestLoadSeedRejectsUnknownFields(t *testing.T) {
	if _, err := loadSeed(strings.NewReader("policy_templatez: []\n")); err == nil {
		t.Error("expected error for unknown top-level key")
	}
}

func TestSeedRejectsBadSeverity(t *testing.T) {
	db := testdb.New(t)
	seed, err := loadSeed(strings.NewReader(`
legal_alerts:
  - id: a1
    title: T
    summary: S
    severity: apocalyptic
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := applySeed(context.Background(), db, seed); err == nil {
		t.Error("expected severity validation error")
	}
}
