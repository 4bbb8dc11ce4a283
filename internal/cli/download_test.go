package cli

import (
	"strings"
	"testing"
	"time"
)

func TestParseDateRangeExplicit(t *testing.T) {
	r, err := parseDateRange("2024-01-10", "2024-01-20")
	if err != nil {
		t.Fatalf("parseDateRange() error = %v", err)
	}

	if got := r.Start.Format(time.RFC3339); got != "2024-01-10T00:00:00Z" {
		t.Errorf("Start = %s, want 2024-01-10T00:00:00Z", got)
	}
	if got := r.End.Format(time.RFC3339); got != "2024-01-20T23:59:59Z" {
		t.Errorf("End = %s, want 2024-01-20T23:59:59Z", got)
	}
}

func TestParseDateRangeDefaults(t *testing.T) {
	r, err := parseDateRange("", "")
	if err != nil {
		t.Fatalf("parseDateRange() error = %v", err)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	if !r.End.Equal(today) {
		t.Errorf("default End = %v, want end of today %v", r.End, today)
	}

	wantStart := today.AddDate(0, 0, -defaultLookbackDays)
	if r.Start.Day() != wantStart.Day() {
		t.Errorf("default Start = %v, want %d days back", r.Start, defaultLookbackDays)
	}
}

func TestParseDateRangeRejectsInvertedRange(t *testing.T) {
	_, err := parseDateRange("2024-02-01", "2024-01-01")
	if err == nil || !strings.Contains(err.Error(), "after") {
		t.Errorf("parseDateRange() error = %v, want inverted-range error", err)
	}
}

func TestParseDateRangeRejectsBadFormat(t *testing.T) {
	for _, bad := range []string{"01/10/2024", "2024-13-01", "yesterday"} {
		if _, err := parseDateRange(bad, ""); err == nil {
			t.Errorf("parseDateRange(%q) should fail", bad)
		}
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "****"},
		{"abcdefghijklmnop", "abcd...mnop"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
