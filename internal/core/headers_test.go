package core

import "testing"

func TestMessageID(t *testing.T) {
	tests := []struct {
		name     string
		headers  string
		want     string
		wantCode string
	}{
		{
			name:    "canonical name",
			headers: `[["Received","by mx"],["Message-Id","<abc@x>"]]`,
			want:    "<abc@x>",
		},
		{
			name:    "case insensitive",
			headers: `[["message-id","<lower@x>"]]`,
			want:    "<lower@x>",
		},
		{
			name:    "upper case",
			headers: `[["MESSAGE-ID","<upper@x>"]]`,
			want:    "<upper@x>",
		},
		{
			name:    "first match wins",
			headers: `[["Message-Id","<one@x>"],["Message-Id","<two@x>"]]`,
			want:    "<one@x>",
		},
		{
			name:     "missing",
			headers:  `[["Subject","Hello"]]`,
			wantCode: ErrorMissingMessageID,
		},
		{
			name:     "empty list",
			headers:  `[]`,
			wantCode: ErrorMissingMessageID,
		},
		{
			name:     "invalid json",
			headers:  `not json`,
			wantCode: ErrorMalformedProviderResponse,
		},
		{
			name:     "wrong shape",
			headers:  `{"Message-Id":"<abc@x>"}`,
			wantCode: ErrorMalformedProviderResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MessageID(tt.headers)
			if tt.wantCode != "" {
				if !HasTextCode(err, tt.wantCode) {
					t.Fatalf("MessageID() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("MessageID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MessageID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"Alice <Alice@Example.COM>", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"not an address", "not an address"},
		{"José@example.com", "josé@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
