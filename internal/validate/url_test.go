package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		constraints URLConstraints
		wantErr     error
	}{
		{"valid https", "https://example.com/event", DefaultURLConstraints, nil},
		{"http blocked by default", "http://example.com", DefaultURLConstraints, ErrDisallowedScheme},
		{"http allowed for public web", "http://example.com", PublicWebURLConstraints, nil},
		{"empty", "", DefaultURLConstraints, ErrEmpty},
		{"no hostname", "https://", DefaultURLConstraints, ErrInvalidURL},
		{"javascript scheme", "javascript:alert(1)", DefaultURLConstraints, ErrDisallowedScheme},
		{"localhost", "https://localhost/admin", DefaultURLConstraints, ErrSSRFRisk},
		{"loopback ip", "https://127.0.0.1/admin", DefaultURLConstraints, ErrSSRFRisk},
		{"private ip", "https://10.0.0.1/internal", DefaultURLConstraints, ErrSSRFRisk},
		{"link local", "https://169.254.169.254/latest/meta-data", DefaultURLConstraints, ErrSSRFRisk},
		{"too long", "https://example.com/" + strings.Repeat("a", 2048), DefaultURLConstraints, ErrStringTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := URL(tt.url, tt.constraints)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestURL_PrivateAllowedWhenUnblocked(t *testing.T) {
	constraints := URLConstraints{AllowedSchemes: []string{"https"}, BlockPrivate: false}
	if _, err := URL("https://10.0.0.1/internal", constraints); err != nil {
		t.Errorf("private IP should pass when BlockPrivate is off: %v", err)
	}
}
