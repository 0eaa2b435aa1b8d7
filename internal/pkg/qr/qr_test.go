package qr

import (
	"bytes"
	"testing"
)

func TestLinkPNG(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		size    int
		wantErr bool
	}{
		{"default size", "https://app.complyhr.test/policy/3f6c", 0, false},
		{"explicit size", "https://app.complyhr.test/sign/abc", 256, false},
		{"size too small", "https://app.complyhr.test/sign/abc", 100, true},
		{"size too large", "https://app.complyhr.test/sign/abc", 5000, true},
		{"relative link", "/sign/abc", 256, true},
		{"non-http scheme", "javascript:alert(1)", 256, true},
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LinkPNG(tt.link, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LinkPNG() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.HasPrefix(got, pngMagic) {
				t.Errorf("LinkPNG() did not return a PNG")
			}
		})
	}
}
