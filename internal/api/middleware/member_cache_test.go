package middleware

import (
	"context"
	"testing"
	"time"

	"complyhr/internal/platform/models"
)

type countingLookup struct {
	members map[string]*models.Member
	calls   int
}

func (l *countingLookup) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	l.calls++
	return l.members[userID], nil
}

func TestMemberCache(t *testing.T) {
	lookup := &countingLookup{members: map[string]*models.Member{
		"u1": {ID: "m1", CompanyID: "c1", UserID: "u1", Role: "owner"},
	}}
	now := time.Unix(1_700_000_000, 0)
	cache := NewMemberCache(lookup, time.Minute)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := cache.GetByUserID(ctx, "u1")
		if err != nil || m == nil || m.CompanyID != "c1" {
			t.Fatalf("lookup %d: %+v, %v", i, m, err)
		}
	}
	if lookup.calls != 1 {
		t.Errorf("calls = %d, want 1", lookup.calls)
	}

	// Misses are not cached.
	for i := 0; i < 2; i++ {
		if m, _ := cache.GetByUserID(ctx, "u2"); m != nil {
			t.Fatalf("unexpected member for u2")
		}
	}
	lookup.members["u2"] = &models.Member{ID: "m2", CompanyID: "c2", UserID: "u2", Role: "admin"}
	if m, _ := cache.GetByUserID(ctx, "u2"); m == nil || m.CompanyID != "c2" {
		t.Errorf("newly onboarded user not found: %+v", m)
	}

	now = now.Add(2 * time.Minute)
	calls := lookup.calls
	cache.GetByUserID(ctx, "u1")
	if lookup.calls != calls+1 {
		t.Errorf("expired entry was served from cache")
	}
}
