// Package model defines domain entities for the application.
package model

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownMealType indicates a meal preference outside the closed set.
var ErrUnknownMealType = errors.New("unknown meal type")

// MealType is a user's dietary preference.
type MealType string

// Meal preference values.
const (
	MealTypeVegetarian MealType = "vegetarian"
	MealTypeMeat       MealType = "meat"
)

// MealTypes contains all valid meal preference values.
var MealTypes = []MealType{MealTypeVegetarian, MealTypeMeat}

// ParseMealType matches raw input against the closed set of meal
// preferences, case-insensitively.
func ParseMealType(raw string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(raw))) {
	case MealTypeVegetarian:
		return MealTypeVegetarian, nil
	case MealTypeMeat:
		return MealTypeMeat, nil
	default:
		return "", ErrUnknownMealType
	}
}

// IsValid reports whether the meal type is one of the known values.
func (t MealType) IsValid() bool {
	return t == MealTypeVegetarian || t == MealTypeMeat
}

// User represents a registered event participant or organiser.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"` // Never serialize
	IsOrganiser        bool       `json:"is_organiser"`
	MealPreference     *MealType  `json:"meal_preference,omitempty"`
	ParticipationStart *time.Time `json:"participation_start_time,omitempty"`
	ParticipationEnd   *time.Time `json:"participation_end_time,omitempty"`
	Meals              []Meal     `json:"meals"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SetParticipationWindow sets both bounds of the participation window.
func (u *User) SetParticipationWindow(start, end *time.Time) {
	u.ParticipationStart = start
	u.ParticipationEnd = end
}

// EventDuration returns the length of the participation window.
// Returns false when either bound is missing.
func (u *User) EventDuration() (time.Duration, bool) {
	if u.ParticipationStart == nil || u.ParticipationEnd == nil {
		return 0, false
	}
	return u.ParticipationEnd.Sub(*u.ParticipationStart), true
}

// HasMeal reports whether the user opted into the given meal slot.
func (u *User) HasMeal(mt MealTime) bool {
	for _, m := range u.Meals {
		if m.MealTime == mt {
			return true
		}
	}
	return false
}
