package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.5", "2.5"},
		{"-1.005", "-1.01"},
		{"999.995", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "Round2(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestEqual2(t *testing.T) {
	assert.True(t, Equal2(decimal.RequireFromString("1000.001"), decimal.RequireFromString("1000")))
	assert.False(t, Equal2(decimal.RequireFromString("999.99"), decimal.RequireFromString("1000")))
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(1000), decimal.RequireFromString("2.5"))
	assert.True(t, got.Equal(decimal.NewFromInt(25)), "got %s", got)
}
