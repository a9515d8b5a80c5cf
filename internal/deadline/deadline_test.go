package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveUniform(t *testing.T) {
	cfg := Config{Mode: ModeUniform, UniformMinutes: 8*60 + 30}

	// Same cutoff regardless of weekday.
	for d := 0; d < 7; d++ {
		day := date(2025, time.June, 2).AddDate(0, 0, d) // Mon..Sun
		got := cfg.Resolve(day, time.UTC)
		assert.Equal(t, day.Add(8*time.Hour+30*time.Minute), got)
	}
}

func TestResolveWeekdayWeekend(t *testing.T) {
	cfg := Config{
		Mode:           ModeWeekdayWeekend,
		WeekdayMinutes: 540, // 9:00
		WeekendMinutes: 660, // 11:00
	}

	monday := date(2025, time.June, 2)
	saturday := date(2025, time.June, 7)
	sunday := date(2025, time.June, 8)

	assert.Equal(t, monday.Add(9*time.Hour), cfg.Resolve(monday, time.UTC))
	assert.Equal(t, saturday.Add(11*time.Hour), cfg.Resolve(saturday, time.UTC))
	assert.Equal(t, sunday.Add(11*time.Hour), cfg.Resolve(sunday, time.UTC))
}

func TestResolvePerDay(t *testing.T) {
	cfg := Config{Mode: ModePerDay}
	for i := range cfg.PerDayMinutes {
		cfg.PerDayMinutes[i] = 300 + i*30
	}

	// 2025-06-08 is a Sunday, index 0.
	sunday := date(2025, time.June, 8)
	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		want := 300 + i*30
		got := cfg.Resolve(day, time.UTC)
		assert.Equal(t, want, got.Hour()*60+got.Minute(), "weekday index %d", i)
		assert.Equal(t, day.Day(), got.Day(), "cutoff must stay on its own date")
	}
}

func TestResolveRespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	cfg := Config{Mode: ModeUniform, UniformMinutes: 540}
	got := cfg.Resolve(date(2025, time.June, 2), loc)

	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, loc, got.Location())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"uniform ok", Config{Mode: ModeUniform, UniformMinutes: 0}, false},
		{"uniform max", Config{Mode: ModeUniform, UniformMinutes: 1439}, false},
		{"uniform negative", Config{Mode: ModeUniform, UniformMinutes: -1}, true},
		{"uniform too large", Config{Mode: ModeUniform, UniformMinutes: 1440}, true},
		{"split bad weekend", Config{Mode: ModeWeekdayWeekend, WeekdayMinutes: 540, WeekendMinutes: 2000}, true},
		{"per-day bad entry", Config{Mode: ModePerDay, PerDayMinutes: [7]int{0, 0, 0, -5, 0, 0, 0}}, true},
		{"unknown mode", Config{Mode: Mode(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLegacyBooleanView(t *testing.T) {
	assert.False(t, Config{Mode: ModeUniform}.CustomDeadlinesEnabled())
	assert.True(t, Config{Mode: ModeWeekdayWeekend}.CustomDeadlinesEnabled())
	assert.False(t, Config{Mode: ModePerDay}.CustomDeadlinesEnabled())
}

func TestResolveDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	day := date(2025, time.March, 15)

	first := cfg.Resolve(day, time.UTC)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cfg.Resolve(day, time.UTC))
	}
}
