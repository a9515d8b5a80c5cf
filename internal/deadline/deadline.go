package deadline

import (
	"fmt"
	"time"
)

// Mode selects how a day's cutoff time is resolved.
type Mode int

const (
	// ModeUniform uses one minute-of-day value for every date.
	ModeUniform Mode = 0
	// ModeWeekdayWeekend picks between a weekday and a weekend value.
	ModeWeekdayWeekend Mode = 1
	// ModePerDay indexes a 7-element minute array by weekday, 0 = Sunday.
	ModePerDay Mode = 2
)

const minutesPerDay = 24 * 60

// Config holds a user's deadline policy. Minute values are minutes after
// local midnight and must fall in [0, 1440).
type Config struct {
	Mode           Mode   `json:"mode"`
	UniformMinutes int    `json:"uniform_minutes"`
	WeekdayMinutes int    `json:"weekday_minutes"`
	WeekendMinutes int    `json:"weekend_minutes"`
	PerDayMinutes  [7]int `json:"per_day_minutes"`
}

// DefaultConfig is a 9:00 uniform cutoff.
func DefaultConfig() Config {
	cfg := Config{
		Mode:           ModeUniform,
		UniformMinutes: 9 * 60,
		WeekdayMinutes: 9 * 60,
		WeekendMinutes: 11 * 60,
	}
	for i := range cfg.PerDayMinutes {
		cfg.PerDayMinutes[i] = 9 * 60
	}
	return cfg
}

// CustomDeadlinesEnabled is the legacy boolean view over Mode kept for old
// clients: true exactly when the weekday/weekend split is active. It is
// derived on read and never accepted as input.
func (c Config) CustomDeadlinesEnabled() bool {
	return c.Mode == ModeWeekdayWeekend
}

// Validate checks the mode and every minute value the mode can reach.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeUniform:
		return validMinutes(c.UniformMinutes)
	case ModeWeekdayWeekend:
		if err := validMinutes(c.WeekdayMinutes); err != nil {
			return err
		}
		return validMinutes(c.WeekendMinutes)
	case ModePerDay:
		for _, m := range c.PerDayMinutes {
			if err := validMinutes(m); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown deadline mode %d", c.Mode)
	}
}

func validMinutes(m int) error {
	if m < 0 || m >= minutesPerDay {
		return fmt.Errorf("deadline minutes %d out of range [0, %d)", m, minutesPerDay)
	}
	return nil
}

// MinutesFor returns the cutoff minute-of-day for the given date.
func (c Config) MinutesFor(date time.Time) int {
	switch c.Mode {
	case ModeWeekdayWeekend:
		if isWeekend(date.Weekday()) {
			return c.WeekendMinutes
		}
		return c.WeekdayMinutes
	case ModePerDay:
		return c.PerDayMinutes[int(date.Weekday())]
	default:
		return c.UniformMinutes
	}
}

// Resolve maps a calendar date to its absolute cutoff instant in loc.
// The result always falls on the same calendar day as date.
func (c Config) Resolve(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	m := c.MinutesFor(date)
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, loc)
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
