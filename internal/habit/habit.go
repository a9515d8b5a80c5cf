package habit

import "time"

type HabitType string

const (
	HabitMadeBed    HabitType = "made_bed"
	HabitWorkout    HabitType = "workout"
	HabitSleep      HabitType = "sleep"
	HabitMeditation HabitType = "meditation"
	HabitJournaling HabitType = "journaling"
	HabitColdShower HabitType = "cold_shower"
)

// CatalogEntry is immutable reference data for one habit type.
type CatalogEntry struct {
	Type         HabitType `json:"type"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	DefaultGoal  int       `json:"default_goal"`
	GoalUnit     string    `json:"goal_unit"`
	NeedsPhoto   bool      `json:"needs_photo"`
	DisplayOrder int       `json:"display_order"`
}

// Catalog lists every habit the app knows about. Order matters: it is the
// default display order for new users.
var Catalog = []CatalogEntry{
	{Type: HabitMadeBed, Name: "Make Your Bed", Icon: "bed.double.fill", DefaultGoal: 1, GoalUnit: "photo", NeedsPhoto: true, DisplayOrder: 0},
	{Type: HabitWorkout, Name: "Morning Workout", Icon: "figure.run", DefaultGoal: 20, GoalUnit: "minutes", NeedsPhoto: true, DisplayOrder: 1},
	{Type: HabitSleep, Name: "Sleep Duration", Icon: "moon.zzz.fill", DefaultGoal: 7, GoalUnit: "hours", DisplayOrder: 2},
	{Type: HabitMeditation, Name: "Meditation", Icon: "brain.head.profile", DefaultGoal: 10, GoalUnit: "minutes", DisplayOrder: 3},
	{Type: HabitJournaling, Name: "Journaling", Icon: "book.closed.fill", DefaultGoal: 1, GoalUnit: "entry", DisplayOrder: 4},
	{Type: HabitColdShower, Name: "Cold Shower", Icon: "drop.fill", DefaultGoal: 2, GoalUnit: "minutes", NeedsPhoto: true, DisplayOrder: 5},
}

// CatalogEntryFor returns the catalog entry for t, or false when t is unknown.
func CatalogEntryFor(t HabitType) (CatalogEntry, bool) {
	for _, e := range Catalog {
		if e.Type == t {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Config is a user's per-habit configuration row.
type Config struct {
	HabitType    HabitType `json:"habit_type" db:"habit_type"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	IsEnabled    bool      `json:"is_enabled" db:"is_enabled"`
	Goal         int       `json:"goal" db:"goal"`
	GoalUnit     string    `json:"goal_unit"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateConfigRequest struct {
	HabitType    HabitType `json:"habit_type"`
	IsEnabled    *bool     `json:"is_enabled,omitempty"`
	Goal         *int      `json:"goal,omitempty"`
	DisplayOrder *int      `json:"display_order,omitempty"`
}
