package compliance

import (
	"testing"
	"time"

	"complyhr/internal/platform/models"
)

func TestStatutoryEntitlement(t *testing.T) {
	tests := []struct {
		days float64
		want float64
	}{
		{5, 28},
		{6, 28},
		{3, 16.8},
		{2.5, 14},
		{0, 0},
	}
	for _, tt := range tests {
		if got := StatutoryEntitlement(tt.days); got != tt.want {
			t.Errorf("StatutoryEntitlement(%v) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestDaysPerWeek(t *testing.T) {
	tests := []struct {
		hours, fullTime, want float64
	}{
		{40, 40, 5},
		{20, 40, 2.5},
		{37.5, 37.5, 5},
		{24, 0, 3},
		{0, 40, 0},
		{80, 40, 7},
	}
	for _, tt := range tests {
		if got := DaysPerWeek(tt.hours, tt.fullTime); got != tt.want {
			t.Errorf("DaysPerWeek(%v, %v) = %v, want %v", tt.hours, tt.fullTime, got, tt.want)
		}
	}
}

func TestHolidayEntitlement(t *testing.T) {
	now2026 := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	now2028 := time.Date(2028, time.May, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start *models.Date
		days  float64
		now   time.Time
		want  float64
	}{
		{"no start date", nil, 5, now2026, 28},
		{"started last year", date(2025, time.June, 1), 5, now2026, 28},
		{"1 January gets full year", date(2026, time.January, 1), 5, now2026, 28},
		{"31 December gets one day in 365", date(2026, time.December, 31), 5, now2026, 0.1},
		{"1 July half year", date(2026, time.July, 1), 5, now2026, 14.1},
		{"part time 1 July", date(2026, time.July, 1), 3, now2026, 8.5},
		{"leap year 31 December", date(2028, time.December, 31), 5, now2028, 0.1},
		{"leap year 1 March", date(2028, time.March, 1), 5, now2028, 23.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HolidayEntitlement(tt.start, tt.days, tt.now)
			if got.ProRata != tt.want {
				t.Errorf("ProRata = %v, want %v", got.ProRata, tt.want)
			}
			if got.ProRata > got.Statutory {
				t.Errorf("ProRata %v exceeds statutory %v", got.ProRata, got.Statutory)
			}
		})
	}
}
