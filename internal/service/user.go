// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/attendly/attendly/internal/auth"
	"github.com/attendly/attendly/internal/metrics"
	"github.com/attendly/attendly/internal/model"
	"github.com/attendly/attendly/internal/repository"
)

// ErrInvalidCredentials is returned for every login failure. Unknown
// email and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the persistence contract the service depends on.
// *repository.Repository satisfies it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User, mealIDs []int64) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User, mealIDs []int64, replaceMeals bool) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetMealByTime(ctx context.Context, mt model.MealTime) (*model.Meal, error)
}

// UserService handles registration, sessions and user management.
type UserService struct {
	store    UserStore
	tokens   *auth.TokenManager
	metrics  metrics.Recorder
	validate *validator.Validate

	// decoyHash is verified against when the login email is unknown, so
	// both failure paths pay the same hashing cost.
	decoyHash string
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens *auth.TokenManager, recorder metrics.Recorder) (*UserService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	decoy, err := auth.HashPassword("attendly-decoy-credential")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}

	return &UserService{
		store:     store,
		tokens:    tokens,
		metrics:   recorder,
		validate:  validator.New(),
		decoyHash: decoy,
	}, nil
}

// Tokens exposes the token manager for the auth middleware.
func (s *UserService) Tokens() *auth.TokenManager {
	return s.tokens
}

// RegisterInput defines input for self-service registration.
// Timestamps are raw ISO-8601 strings from the request body.
type RegisterInput struct {
	Email              string
	Password           string
	IsOrganiser        bool
	MealPreference     string
	ParticipationStart string
	ParticipationEnd   string
	MealChoices        []string
}

// Register validates the input, hashes the password and persists the
// user. The registration flow requires a complete participation window.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	user, mealIDs, err := s.buildUser(ctx, input, true)
	if err != nil {
		s.metrics.IncRegistrationRejected(rejectReason(err))
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user, mealIDs); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistrationRejected("duplicate_email")
		}
		return nil, err
	}

	// Re-read so the response carries the stored meal associations.
	created, err := s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserRegistered()
	return created, nil
}

// CreateUser is the administrative variant of Register: the participation
// window may be partial or absent.
func (s *UserService) CreateUser(ctx context.Context, input RegisterInput) (*model.User, error) {
	user, mealIDs, err := s.buildUser(ctx, input, false)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user, mealIDs); err != nil {
		return nil, err
	}

	created, err := s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserRegistered()
	return created, nil
}

// buildUser runs the shared validation chain for Register and CreateUser.
func (s *UserService) buildUser(ctx context.Context, input RegisterInput, requireWindow bool) (*model.User, []int64, error) {
	if input.Email == "" || input.Password == "" {
		return nil, nil, ErrEmailRequired
	}

	email, err := s.normalizeEmail(input.Email)
	if err != nil {
		return nil, nil, err
	}

	var mealPref *model.MealType
	if input.MealPreference != "" {
		mt, err := model.ParseMealType(input.MealPreference)
		if err != nil {
			return nil, nil, err
		}
		mealPref = &mt
	}

	start, err := parseTimestamp(input.ParticipationStart)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTimestamp(input.ParticipationEnd)
	if err != nil {
		return nil, nil, err
	}

	if err := validateWindow(start, end, time.Now().UTC(), requireWindow); err != nil {
		return nil, nil, err
	}

	mealIDs, err := s.resolveMealChoices(ctx, input.MealChoices)
	if err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:              email,
		PasswordHash:       hash,
		IsOrganiser:        input.IsOrganiser,
		MealPreference:     mealPref,
		ParticipationStart: start,
		ParticipationEnd:   end,
	}
	return user, mealIDs, nil
}

// resolveMealChoices maps raw slot names to pre-seeded meal rows. A slot
// that parses but has no row is an integrity failure, never a silent
// create: seeding runs once at startup and meal_time is unique.
func (s *UserService) resolveMealChoices(ctx context.Context, choices []string) ([]int64, error) {
	if len(choices) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(choices))
	seen := make(map[int64]bool, len(choices))
	for _, raw := range choices {
		mt, err := model.ParseMealTime(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownMealTime, raw)
		}

		meal, err := s.store.GetMealByTime(ctx, mt)
		if err != nil {
			return nil, err
		}
		if !seen[meal.ID] {
			ids = append(ids, meal.ID)
			seen[meal.ID] = true
		}
	}
	return ids, nil
}

// Login verifies credentials and issues a session token. All failures
// surface as ErrInvalidCredentials; when the email is unknown a decoy
// hash is verified so the timing profile matches the wrong-password
// path.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		s.metrics.IncLoginFailure()
		return "", nil, ErrEmailRequired
	}

	normalized, err := s.normalizeEmail(email)
	if err != nil {
		s.metrics.IncLoginFailure()
		return "", nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = auth.VerifyPassword(password, s.decoyHash)
			s.metrics.IncLoginFailure()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.metrics.IncLoginSuccess()
	return token, user, nil
}

// Logout revokes the presented token's jti. Absent, malformed or
// already-revoked tokens all succeed: logout is idempotent.
func (s *UserService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.ExtractClaims(rawToken)
	if err != nil {
		// Nothing to revoke.
		return nil
	}

	revoked, err := s.tokens.Revoke(ctx, claims)
	if err != nil {
		return err
	}

	// Repeat logouts of the same jti are fine but only the first one
	// counts as a revocation.
	if revoked {
		s.metrics.IncTokenRevoked()
	}
	return nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// ListUsers returns all users with their meal associations.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUserInput defines a partial update. Nil fields are left
// untouched; MealChoices replaces the association set when non-nil.
type UpdateUserInput struct {
	ID                 int64
	Email              *string
	IsOrganiser        *bool
	MealPreference     *string
	ParticipationStart *string
	ParticipationEnd   *string
	MealChoices        []string
}

// UpdateUser applies a partial update. Partial participation windows are
// accepted here; only the ordering invariant is enforced on the merged
// window.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email, err := s.normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if input.IsOrganiser != nil {
		user.IsOrganiser = *input.IsOrganiser
	}

	if input.MealPreference != nil {
		if *input.MealPreference == "" {
			user.MealPreference = nil
		} else {
			mt, err := model.ParseMealType(*input.MealPreference)
			if err != nil {
				return nil, err
			}
			user.MealPreference = &mt
		}
	}

	if input.ParticipationStart != nil {
		start, err := parseTimestamp(*input.ParticipationStart)
		if err != nil {
			return nil, err
		}
		user.ParticipationStart = start
	}
	if input.ParticipationEnd != nil {
		end, err := parseTimestamp(*input.ParticipationEnd)
		if err != nil {
			return nil, err
		}
		user.ParticipationEnd = end
	}

	if user.ParticipationStart != nil && user.ParticipationEnd != nil &&
		user.ParticipationEnd.Before(*user.ParticipationStart) {
		return nil, ErrEndBeforeStart
	}

	replaceMeals := input.MealChoices != nil
	var mealIDs []int64
	if replaceMeals {
		mealIDs, err = s.resolveMealChoices(ctx, input.MealChoices)
		if err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateUser(ctx, user, mealIDs, replaceMeals); err != nil {
		return nil, err
	}

	// Re-read so the response reflects the stored associations.
	updated, err := s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserUpdated()
	return updated, nil
}

// DeleteUser removes a user and its meal associations.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.metrics.IncUserDeleted()
	return nil
}

// rejectReason classifies a registration error for metrics labels.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmailRequired):
		return "missing_fields"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, ErrStartInPast):
		return "start_in_past"
	case errors.Is(err, ErrEndBeforeStart):
		return "end_before_start"
	case errors.Is(err, ErrIncompleteWindow):
		return "incomplete_window"
	case errors.Is(err, model.ErrUnknownMealType):
		return "unknown_meal_type"
	case errors.Is(err, model.ErrUnknownMealTime):
		return "unknown_meal_time"
	case errors.Is(err, repository.ErrMealNotSeeded):
		return "meal_not_seeded"
	default:
		return "other"
	}
}
