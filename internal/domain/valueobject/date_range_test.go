package valueobject

import (
	"testing"
	"time"
)

func TestNewDateRange(t *testing.T) {
	t.Run("truncates to calendar days", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
		end := time.Date(2024, 1, 3, 6, 0, 0, 0, time.UTC)

		r, err := NewDateRange(start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Start.Hour() != 0 || r.End.Hour() != 0 {
			t.Errorf("expected midnight bounds, got %s and %s", r.Start, r.End)
		}
		if r.Days() != 3 {
			t.Errorf("expected 3 days, got %d", r.Days())
		}
	})

	t.Run("single day range", func(t *testing.T) {
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		r, err := NewDateRange(day, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Days() != 1 {
			t.Errorf("expected 1 day, got %d", r.Days())
		}
	})

	t.Run("rejects start after end", func(t *testing.T) {
		start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
		if _, err := NewDateRange(start, end); err == nil {
			t.Error("expected error for inverted range")
		}
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "2024-02-29", wantErr: false},
		{value: "2023-02-29", wantErr: true},
		{value: "15/03/2024", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil && got.Location() != time.UTC {
				t.Errorf("expected UTC, got %s", got.Location())
			}
		})
	}
}
