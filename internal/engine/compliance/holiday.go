package compliance

import (
	"math"
	"time"

	"complyhr/internal/platform/models"
)

const (
	StatutoryWeeks   = 5.6
	StatutoryCapDays = 28.0
	FullTimeHours    = 40.0
)

type Entitlement struct {
	DaysPerWeek float64 `json:"days_per_week"`
	Statutory   float64 `json:"statutory"`
	ProRata     float64 `json:"pro_rata"`
}

// DaysPerWeek converts contracted hours to a five-day-week equivalent.
func DaysPerWeek(weeklyHours, fullTimeHours float64) float64 {
	if fullTimeHours <= 0 {
		fullTimeHours = FullTimeHours
	}
	if weeklyHours <= 0 {
		return 0
	}
	return math.Min(5*weeklyHours/fullTimeHours, 7)
}

// StatutoryEntitlement is 5.6 weeks of the working pattern, capped at 28 days.
func StatutoryEntitlement(daysPerWeek float64) float64 {
	return round1(math.Min(StatutoryWeeks*daysPerWeek, StatutoryCapDays))
}

// HolidayEntitlement pro-rates the statutory minimum when employment starts
// inside the current calendar year: the fraction is the number of days from the
// start date (inclusive) to the next 1 January over the days in the year.
func HolidayEntitlement(start *models.Date, daysPerWeek float64, now time.Time) Entitlement {
	statutory := StatutoryEntitlement(daysPerWeek)
	e := Entitlement{DaysPerWeek: daysPerWeek, Statutory: statutory, ProRata: statutory}

	if start == nil || start.Year() != now.Year() {
		return e
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	nextYear := yearStart.AddDate(1, 0, 0)
	daysInYear := nextYear.Sub(yearStart).Hours() / 24
	remaining := nextYear.Sub(start.Time).Hours() / 24

	e.ProRata = round1(statutory * remaining / daysInYear)
	return e
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
