// Package calendar does date arithmetic on naive civil dates.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves d by n calendar months. When the day does not exist in the
// target month it is clamped to that month's last day.
func AddMonths(d civil.Date, n int) civil.Date {
	idx := d.Year*12 + int(d.Month) - 1 + n
	y := floorDiv(idx, 12)
	m := time.Month(idx - y*12 + 1)
	day := d.Day
	if last := DaysIn(y, m); day > last {
		day = last
	}
	return civil.Date{Year: y, Month: m, Day: day}
}

// AddTerm advances start by length units.
func AddTerm(start civil.Date, length int, unit models.TermUnit) (civil.Date, error) {
	if !start.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: start date %q is not a calendar date", models.ErrInvalidArgument, start.String())
	}
	if length <= 0 {
		return civil.Date{}, fmt.Errorf("%w: term length must be positive, got %d", models.ErrInvalidArgument, length)
	}
	switch unit {
	case models.TermDay:
		return start.AddDays(length), nil
	case models.TermWeek:
		return start.AddDays(length * 7), nil
	case models.TermMonth:
		return AddMonths(start, length), nil
	case models.TermYear:
		return AddMonths(start, length*12), nil
	}
	return civil.Date{}, fmt.Errorf("%w: unknown term unit %q", models.ErrInvalidArgument, unit)
}

// Compare orders dates: -1 if a is before b, 1 if after, 0 if equal.
func Compare(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
