package tenant

import "testing"

func TestRoles(t *testing.T) {
	tests := []struct {
		role     string
		admin    bool
		canWrite bool
	}{
		{"owner", true, true},
		{"admin", true, true},
		{"manager", false, true},
		{"viewer", false, false},
	}
	for _, tt := range tests {
		tc := Context{CompanyID: "c1", UserID: "u1", Role: tt.role}
		if tc.IsAdmin() != tt.admin || tc.CanWrite() != tt.canWrite {
			t.Errorf("%s: IsAdmin=%v CanWrite=%v", tt.role, tc.IsAdmin(), tc.CanWrite())
		}
	}
}

func TestActor(t *testing.T) {
	if (Context{}).Actor() != nil {
		t.Error("expected nil actor for anonymous context")
	}
	if got := (Context{UserID: "u1"}).Actor(); got == nil || *got != "u1" {
		t.Errorf("Actor() = %v", got)
	}
}
