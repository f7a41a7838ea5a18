package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseMealTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    MealTime
		wantErr error
	}{
		{"lowercase", "lunch", MealTimeLunch, nil},
		{"uppercase", "BREAKFAST", MealTimeBreakfast, nil},
		{"mixed_case", "DiNnEr", MealTimeDinner, nil},
		{"padded", "  lunch ", MealTimeLunch, nil},
		{"unknown", "brunch", "", ErrUnknownMealTime},
		{"empty", "", "", ErrUnknownMealTime},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseMealTime(test.raw)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected error %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestParseMealType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    MealType
		wantErr error
	}{
		{"vegetarian", "vegetarian", MealTypeVegetarian, nil},
		{"meat_uppercase", "MEAT", MealTypeMeat, nil},
		{"unknown", "vegan", "", ErrUnknownMealType},
		{"empty", "", "", ErrUnknownMealType},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseMealType(test.raw)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected error %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestEventDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	u := &User{}
	if _, ok := u.EventDuration(); ok {
		t.Error("expected no duration when both bounds are missing")
	}

	u.SetParticipationWindow(&start, nil)
	if _, ok := u.EventDuration(); ok {
		t.Error("expected no duration when end bound is missing")
	}

	u.SetParticipationWindow(&start, &end)
	d, ok := u.EventDuration()
	if !ok {
		t.Fatal("expected duration when both bounds are present")
	}
	if d != 3*time.Hour {
		t.Errorf("expected 3h, got %v", d)
	}
}

func TestHasMeal(t *testing.T) {
	t.Parallel()

	u := &User{Meals: []Meal{{ID: 2, MealTime: MealTimeLunch}}}

	if !u.HasMeal(MealTimeLunch) {
		t.Error("expected user to have lunch")
	}
	if u.HasMeal(MealTimeDinner) {
		t.Error("expected user not to have dinner")
	}
}
