package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMorningScore(t *testing.T) {
	tests := []struct {
		name         string
		completed    int
		enabled      int
		beforeCutoff bool
		avgAIScore   float64
		want         int
	}{
		{"no habits enabled", 0, 0, false, 0, 0},
		{"nothing done", 0, 4, false, 0, 0},
		{"all done late, no AI", 4, 4, false, 0, 70},
		{"all done on time, no AI", 4, 4, true, 0, 85},
		{"perfect morning", 4, 4, true, 100, 100},
		{"half done on time", 2, 4, true, 0, 50},
		{"all done on time, mid AI", 3, 3, true, 60, 94},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMorningScore(tt.completed, tt.enabled, tt.beforeCutoff, tt.avgAIScore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateDisciplineScore(t *testing.T) {
	assert.Equal(t, 0.0, CalculateDisciplineScore(0, 0, 0))

	// 10-day streak, 40 perfect mornings, 3 achievements.
	got := CalculateDisciplineScore(10, 40, 3)
	assert.InDelta(t, 100*0.3+40*0.05+3*1.0, got, 1e-9)

	// Streak dominates: doubling it quadruples its contribution.
	assert.Greater(t, CalculateDisciplineScore(20, 0, 0), 3.9*CalculateDisciplineScore(10, 0, 0))
}
