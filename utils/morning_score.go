package utils

import "math"

// CalculateMorningScore grades one day 0-100. Completion ratio carries most
// of the weight, finishing before the cutoff adds a flat bonus, and the mean
// AI verification score tops it off.
func CalculateMorningScore(completed, enabled int, beforeCutoff bool, avgAIScore float64) int {
	if enabled == 0 {
		return 0
	}

	ratio := float64(completed) / float64(enabled)
	score := ratio * 70.0

	if beforeCutoff {
		score += 15.0
	}
	score += (avgAIScore / 100.0) * 15.0

	return int(math.Round(math.Min(100, math.Max(0, score))))
}

// CalculateDisciplineScore ranks a user's overall consistency:
// currentStreak^2 weighted, plus perfect-morning volume, plus achievements.
func CalculateDisciplineScore(currentStreak, totalPerfectMornings, achievementsCount int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	perfectScore := float64(totalPerfectMornings) * 0.05
	achievementScore := float64(achievementsCount) * 1.0

	return streakScore + perfectScore + achievementScore
}
