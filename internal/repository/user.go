package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// CreateUser inserts a new user and its meal associations in one
// transaction. The user's ID and timestamps are filled in on success.
func (r *Repository) CreateUser(ctx context.Context, user *model.User, mealIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO users (email, password_hash, is_organiser, meal_preference,
			participation_start_time, participation_end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`

	now := time.Now().UTC()
	err = tx.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.IsOrganiser,
		user.MealPreference,
		user.ParticipationStart,
		user.ParticipationEnd,
		now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := insertUserMeals(ctx, tx, user.ID, mealIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user and its meals by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, is_organiser, meal_preference,
			participation_start_time, participation_end_time, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	if err := r.loadUserMeals(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user and its meals by email address.
// Callers are expected to pass the lowercase-normalized form.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, is_organiser, meal_preference,
			participation_start_time, participation_end_time, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := r.loadUserMeals(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser persists changed user fields. When replaceMeals is true the
// meal associations are replaced with mealIDs in the same transaction.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User, mealIDs []int64, replaceMeals bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE users
		SET email = $2, is_organiser = $3, meal_preference = $4,
			participation_start_time = $5, participation_end_time = $6,
			updated_at = $7
		WHERE id = $1
	`

	now := time.Now().UTC()
	tag, err := tx.Exec(ctx, query,
		user.ID,
		user.Email,
		user.IsOrganiser,
		user.MealPreference,
		user.ParticipationStart,
		user.ParticipationEnd,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	user.UpdatedAt = now

	if replaceMeals {
		if _, err := tx.Exec(ctx, `DELETE FROM user_meals WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("failed to clear user meals: %w", err)
		}
		if err := insertUserMeals(ctx, tx, user.ID, mealIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DeleteUser removes a user. Meal associations go with it via the
// ON DELETE CASCADE on user_meals.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users with their meal associations.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, email, password_hash, is_organiser, meal_preference,
			participation_start_time, participation_end_time, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	byID := make(map[int64]*model.User)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	if len(users) == 0 {
		return users, nil
	}

	// One pass over the join table instead of a query per user.
	mealRows, err := r.pool.Query(ctx, `
		SELECT um.user_id, m.id, m.meal_time
		FROM user_meals um
		JOIN meals m ON m.id = um.meal_id
		ORDER BY um.user_id, m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user meals: %w", err)
	}
	defer mealRows.Close()

	for mealRows.Next() {
		var userID int64
		var meal model.Meal
		if err := mealRows.Scan(&userID, &meal.ID, &meal.MealTime); err != nil {
			return nil, fmt.Errorf("failed to scan user meal: %w", err)
		}
		if user, ok := byID[userID]; ok {
			user.Meals = append(user.Meals, meal)
		}
	}
	if err := mealRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user meals: %w", err)
	}

	return users, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanUser.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsOrganiser,
		&user.MealPreference,
		&user.ParticipationStart,
		&user.ParticipationEnd,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) loadUserMeals(ctx context.Context, user *model.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.meal_time
		FROM user_meals um
		JOIN meals m ON m.id = um.meal_id
		WHERE um.user_id = $1
		ORDER BY m.id
	`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load user meals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var meal model.Meal
		if err := rows.Scan(&meal.ID, &meal.MealTime); err != nil {
			return fmt.Errorf("failed to scan meal: %w", err)
		}
		user.Meals = append(user.Meals, meal)
	}
	return rows.Err()
}

func insertUserMeals(ctx context.Context, tx pgx.Tx, userID int64, mealIDs []int64) error {
	for _, mealID := range mealIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_meals (user_id, meal_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, mealID)
		if err != nil {
			return fmt.Errorf("failed to associate meal: %w", err)
		}
	}
	return nil
}
