package models

import (
	"fmt"
	"strconv"
	"strings"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// DaysOfWeek is the canonical day order of the weekly schedule.
var DaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type MealType string

const (
	Breakfast MealType = "Breakfast"
	Snack1    MealType = "Snack 1"
	Lunch     MealType = "Lunch"
	Snack2    MealType = "Snack 2"
	Dinner    MealType = "Dinner"
)

// MealTypes is the canonical, total set of slots of every day.
var MealTypes = []MealType{Breakfast, Snack1, Lunch, Snack2, Dinner}

// ParseDayOfWeek parses a day name, abbreviation or number (1=Monday, 7=Sunday).
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	dayMap := map[string]DayOfWeek{
		"mon":       Monday,
		"monday":    Monday,
		"tue":       Tuesday,
		"tuesday":   Tuesday,
		"wed":       Wednesday,
		"wednesday": Wednesday,
		"thu":       Thursday,
		"thursday":  Thursday,
		"fri":       Friday,
		"friday":    Friday,
		"sat":       Saturday,
		"saturday":  Saturday,
		"sun":       Sunday,
		"sunday":    Sunday,
	}

	part := strings.TrimSpace(strings.ToLower(s))
	if day, ok := dayMap[part]; ok {
		return day, nil
	}
	if num, err := strconv.Atoi(part); err == nil && num >= 1 && num <= 7 {
		return DaysOfWeek[num-1], nil
	}
	return "", fmt.Errorf("invalid day of week: %s", s)
}

// ParseMealType accepts "Snack 1", "snack1", "snack-1" and so on.
func ParseMealType(s string) (MealType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)
	for _, mt := range MealTypes {
		if strings.ToLower(strings.ReplaceAll(string(mt), " ", "")) == normalized {
			return mt, nil
		}
	}
	return "", fmt.Errorf("invalid meal type: %s", s)
}

// Meal is one slot of a day. A nil RecipeID means no recipe is assigned.
type Meal struct {
	MealType MealType `json:"meal_type"`
	RecipeID *string  `json:"recipe_id"`
}

// HasRecipe reports whether the slot references the given recipe.
func (m Meal) HasRecipe(recipeID string) bool {
	return m.RecipeID != nil && *m.RecipeID == recipeID
}

type DaySchedule struct {
	DayOfWeek DayOfWeek `json:"day_of_week"`
	Meals     []Meal    `json:"meals"`
}

// Meal returns the slot for the given meal type.
func (d DaySchedule) Meal(mealType MealType) (Meal, bool) {
	for _, m := range d.Meals {
		if m.MealType == mealType {
			return m, true
		}
	}
	return Meal{}, false
}

// Clone returns a deep copy of the day.
func (d DaySchedule) Clone() DaySchedule {
	out := DaySchedule{DayOfWeek: d.DayOfWeek, Meals: make([]Meal, len(d.Meals))}
	for i, m := range d.Meals {
		out.Meals[i] = Meal{MealType: m.MealType, RecipeID: cloneString(m.RecipeID)}
	}
	return out
}

type WeeklySchedule []DaySchedule

// Day returns the schedule of the given day.
func (w WeeklySchedule) Day(day DayOfWeek) (DaySchedule, bool) {
	for _, d := range w {
		if d.DayOfWeek == day {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// AssignedSlots counts the slots that reference a recipe.
func (w WeeklySchedule) AssignedSlots() int {
	count := 0
	for _, d := range w {
		for _, m := range d.Meals {
			if m.RecipeID != nil {
				count++
			}
		}
	}
	return count
}

// EmptyDay returns a day with every slot unassigned.
func EmptyDay(day DayOfWeek) DaySchedule {
	meals := make([]Meal, len(MealTypes))
	for i, mt := range MealTypes {
		meals[i] = Meal{MealType: mt}
	}
	return DaySchedule{DayOfWeek: day, Meals: meals}
}

// EmptyWeek returns the full 7x5 grid with every slot unassigned.
func EmptyWeek() WeeklySchedule {
	week := make(WeeklySchedule, len(DaysOfWeek))
	for i, day := range DaysOfWeek {
		week[i] = EmptyDay(day)
	}
	return week
}

// NormalizeWeek returns the canonical grid built from stored day documents:
// days and slots in canonical order, missing ones unassigned, unknown days and
// meal types dropped. The first stored slot wins when a meal type repeats.
func NormalizeWeek(days []DaySchedule) WeeklySchedule {
	byDay := make(map[DayOfWeek]DaySchedule, len(days))
	for _, d := range days {
		if _, seen := byDay[d.DayOfWeek]; !seen {
			byDay[d.DayOfWeek] = d
		}
	}

	week := make(WeeklySchedule, len(DaysOfWeek))
	for i, day := range DaysOfWeek {
		stored, ok := byDay[day]
		if !ok {
			week[i] = EmptyDay(day)
			continue
		}
		meals := make([]Meal, len(MealTypes))
		for j, mt := range MealTypes {
			meals[j] = Meal{MealType: mt}
			if m, found := stored.Meal(mt); found {
				meals[j].RecipeID = cloneString(m.RecipeID)
			}
		}
		week[i] = DaySchedule{DayOfWeek: day, Meals: meals}
	}
	return week
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
