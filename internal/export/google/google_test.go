package google

import (
	"context"
	"testing"
)

func TestParseRowID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"3", 3, true},
		{" 42 ", 42, true},
		{"3.0", 3, true},
		{"3,0", 3, true},
		{"ID", 0, false},
		{"", 0, false},
		{"3.5", 0, false},
		{"-1", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRowID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseRowID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("expected error without GOOGLE_SPREADSHEET_ID")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("expected error without credentials")
	}
}
