package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryHour(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"21:00", 21},
		{"09:30", 9},
		{"9:30", 9},
		{"00:00", 0},
		{"23:59", 23},
		{"", 21},
		{"x", 21},
		{"25:00", 21},
		{"ab:cd", 21},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Shop{DailySummaryTime: tc.in}.SummaryHour(), "time %q", tc.in)
	}
}
