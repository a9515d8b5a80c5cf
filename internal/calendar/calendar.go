package calendar

import "time"

type CalendarDay struct {
	Date           time.Time `json:"date" db:"date"`
	PerfectMorning bool      `json:"perfect_morning" db:"perfect_morning"`
	MorningScore   int       `json:"morning_score" db:"morning_score"`
	IsToday        bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
