package validator

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"jane@acme.co.uk", false},
		{"not-an-email", true},
		{"Jane <jane@acme.co.uk>", true},
		{"jane@localhost", true},
	}
	for _, tt := range tests {
		if err := Email(tt.email); (err != nil) != tt.wantErr {
			t.Errorf("Email(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestShareCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"W7X9KLM2P", false},
		{"w7x 9kl m2p", false},
		{"W7X-9KL-M2P", false},
		{"W7X9KL", true},
		{"W7X9KLM2!", true},
	}
	for _, tt := range tests {
		if err := ShareCode(tt.code); (err != nil) != tt.wantErr {
			t.Errorf("ShareCode(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
	}
	if got := NormalizeShareCode("w7x 9kl-m2p"); got != "W7X9KLM2P" {
		t.Errorf("NormalizeShareCode = %s", got)
	}
}

func TestDocumentExtension(t *testing.T) {
	if ext, err := DocumentExtension("Handbook.PDF", "pdf"); err != nil || ext != "pdf" {
		t.Errorf("got %q, %v", ext, err)
	}
	if _, err := DocumentExtension("payload.exe", "pdf", "docx"); err == nil {
		t.Error("expected error for .exe")
	}
	if _, err := DocumentExtension("README", "pdf"); err == nil {
		t.Error("expected error for missing extension")
	}
}
