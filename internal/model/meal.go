package model

import (
	"errors"
	"strings"
)

// ErrUnknownMealTime indicates a meal slot outside the closed set.
var ErrUnknownMealTime = errors.New("unknown meal time")

// MealTime is one of the fixed serving slots.
type MealTime string

// Meal slot values.
const (
	MealTimeBreakfast MealTime = "breakfast"
	MealTimeLunch     MealTime = "lunch"
	MealTimeDinner    MealTime = "dinner"
)

// MealTimes contains all valid meal slots, in serving order.
// The seed step inserts exactly one Meal row per entry.
var MealTimes = []MealTime{MealTimeBreakfast, MealTimeLunch, MealTimeDinner}

// ParseMealTime matches raw input against the closed set of meal slots,
// case-insensitively.
func ParseMealTime(raw string) (MealTime, error) {
	switch MealTime(strings.ToLower(strings.TrimSpace(raw))) {
	case MealTimeBreakfast:
		return MealTimeBreakfast, nil
	case MealTimeLunch:
		return MealTimeLunch, nil
	case MealTimeDinner:
		return MealTimeDinner, nil
	default:
		return "", ErrUnknownMealTime
	}
}

// IsValid reports whether the meal time is one of the known slots.
func (t MealTime) IsValid() bool {
	switch t {
	case MealTimeBreakfast, MealTimeLunch, MealTimeDinner:
		return true
	}
	return false
}

// Meal represents one pre-seeded serving slot. Rows are created once at
// startup and only referenced afterwards, never duplicated.
type Meal struct {
	ID       int64    `json:"id"`
	MealTime MealTime `json:"meal_time"`
}
