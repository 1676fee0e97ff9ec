package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeTimeRange(t *testing.T) {
	base := time.Date(2024, 4, 3, 7, 58, 0, 0, time.UTC)

	tests := []struct {
		name     string
		begin    time.Time
		end      time.Time
		step     time.Duration
		expected []time.Time
	}{
		{
			name:  "end excluded",
			begin: base, end: base.Add(3 * time.Hour), step: time.Hour,
			expected: []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)},
		},
		{
			name:  "partial last step",
			begin: base, end: base.Add(90 * time.Minute), step: time.Hour,
			expected: []time.Time{base, base.Add(time.Hour)},
		},
		{
			name:  "single point",
			begin: base, end: base.Add(time.Second), step: time.Hour,
			expected: []time.Time{base},
		},
		{name: "empty range", begin: base, end: base, step: time.Hour},
		{name: "inverted range", begin: base, end: base.Add(-time.Hour), step: time.Hour},
		{name: "zero step", begin: base, end: base.Add(time.Hour), step: 0},
		{name: "negative step", begin: base, end: base.Add(time.Hour), step: -time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeTimeRange(tt.begin, tt.end, tt.step)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}
