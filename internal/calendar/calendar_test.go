package calendar

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestAddTerm(t *testing.T) {
	tests := []struct {
		name   string
		start  civil.Date
		length int
		unit   models.TermUnit
		want   civil.Date
	}{
		{"days", date(2024, 1, 30), 3, models.TermDay, date(2024, 2, 2)},
		{"weeks", date(2024, 12, 25), 2, models.TermWeek, date(2025, 1, 8)},
		{"month clamps in leap year", date(2024, 1, 31), 1, models.TermMonth, date(2024, 2, 29)},
		{"month clamps in common year", date(2023, 1, 31), 1, models.TermMonth, date(2023, 2, 28)},
		{"month to 30 day month", date(2024, 3, 31), 1, models.TermMonth, date(2024, 4, 30)},
		{"months across year", date(2024, 11, 15), 3, models.TermMonth, date(2025, 2, 15)},
		{"clamp does not carry over", date(2024, 1, 31), 2, models.TermMonth, date(2024, 3, 31)},
		{"leap day to common year", date(2024, 2, 29), 1, models.TermYear, date(2025, 2, 28)},
		{"leap day to leap year", date(2024, 2, 29), 4, models.TermYear, date(2028, 2, 29)},
		{"plain year", date(2023, 6, 10), 1, models.TermYear, date(2024, 6, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddTerm(tt.start, tt.length, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddTerm_WeekEqualsSevenDays(t *testing.T) {
	start := date(2024, 2, 20)
	weeks, err := AddTerm(start, 2, models.TermWeek)
	require.NoError(t, err)
	days, err := AddTerm(start, 14, models.TermDay)
	require.NoError(t, err)
	assert.Equal(t, days, weeks)
}

func TestAddTerm_InvalidArgument(t *testing.T) {
	cases := map[string]func() error{
		"zero length": func() error { _, err := AddTerm(date(2024, 1, 1), 0, models.TermDay); return err },
		"negative":    func() error { _, err := AddTerm(date(2024, 1, 1), -2, models.TermMonth); return err },
		"bad date":    func() error { _, err := AddTerm(date(2023, 2, 29), 1, models.TermDay); return err },
		"bad unit":    func() error { _, err := AddTerm(date(2024, 1, 1), 1, "fortnight"); return err },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(fn(), models.ErrInvalidArgument))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February))
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 31, DaysIn(2023, time.December))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(date(2024, 1, 3), date(2024, 1, 5)))
	assert.Equal(t, 1, Compare(date(2024, 1, 5), date(2024, 1, 3)))
	assert.Equal(t, 0, Compare(date(2024, 1, 5), date(2024, 1, 5)))
}
