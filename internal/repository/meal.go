package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly/internal/model"
)

// ErrMealNotSeeded indicates a meal slot has no backing row. The seed
// step runs once at startup, so hitting this at request time means the
// deployment is broken rather than the input.
var ErrMealNotSeeded = errors.New("meal slot not seeded")

// EnsureMealSeed inserts exactly one row per meal slot if absent.
// Idempotent: the UNIQUE constraint on meal_time makes a concurrent
// double-seed converge instead of duplicating rows.
func (r *Repository) EnsureMealSeed(ctx context.Context) error {
	for _, mt := range model.MealTimes {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO meals (meal_time)
			VALUES ($1)
			ON CONFLICT (meal_time) DO NOTHING
		`, mt)
		if err != nil {
			return fmt.Errorf("failed to seed meal %q: %w", mt, err)
		}
	}
	return nil
}

// GetMealByTime resolves a meal slot to its pre-seeded row.
func (r *Repository) GetMealByTime(ctx context.Context, mt model.MealTime) (*model.Meal, error) {
	var meal model.Meal
	err := r.pool.QueryRow(ctx, `
		SELECT id, meal_time FROM meals WHERE meal_time = $1
	`, mt).Scan(&meal.ID, &meal.MealTime)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotSeeded
		}
		return nil, fmt.Errorf("failed to get meal by time: %w", err)
	}
	return &meal, nil
}

// ListMeals returns all seeded meal rows.
func (r *Repository) ListMeals(ctx context.Context) ([]model.Meal, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, meal_time FROM meals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		var meal model.Meal
		if err := rows.Scan(&meal.ID, &meal.MealTime); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}
