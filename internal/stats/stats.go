package stats

type DaysStat struct {
	Period      string `json:"period"` // "week", "month", "year", "all_time"
	PerfectDays int    `json:"perfect_days" db:"perfect_days"`
	TotalDays   int    `json:"total_days"`
}

type UserStats struct {
	TodayPerfect         bool    `json:"today_perfect"`
	TodayCompleted       int     `json:"today_completed"`
	TodayTotal           int     `json:"today_total"`
	PerfectThisWeek      int     `json:"perfect_this_week"`
	PerfectThisMonth     int     `json:"perfect_this_month"`
	PerfectThisYear      int     `json:"perfect_this_year"`
	TotalPerfectMornings int     `json:"total_perfect_mornings"`
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	AchievementsCount    int     `json:"achievements_count"`
	DisciplineScore      float64 `json:"discipline_score"`
}
