// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/attendly/attendly/internal/model"
)

// RegisterRequest represents the request body for registration and
// administrative user creation. Participation bounds are raw ISO-8601
// strings; the service parses and validates them.
type RegisterRequest struct {
	Email                  string   `json:"email"`
	Password               string   `json:"password"`
	IsOrganiser            bool     `json:"is_organiser,omitempty"`
	MealPreference         string   `json:"meal_preference,omitempty"`
	ParticipationStartTime string   `json:"participation_start_time,omitempty"`
	ParticipationEndTime   string   `json:"participation_end_time,omitempty"`
	MealChoices            []string `json:"meal_choices,omitempty"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token. The same token also rides in
// the session cookie for browser clients.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UpdateUserRequest represents a partial user update. Nil fields are
// left unchanged; a non-nil empty meal_preference clears it.
type UpdateUserRequest struct {
	Email                  *string  `json:"email,omitempty"`
	IsOrganiser            *bool    `json:"is_organiser,omitempty"`
	MealPreference         *string  `json:"meal_preference,omitempty"`
	ParticipationStartTime *string  `json:"participation_start_time,omitempty"`
	ParticipationEndTime   *string  `json:"participation_end_time,omitempty"`
	MealChoices            []string `json:"meal_choices,omitempty"`
}

// UserResponse represents a user in API responses. The password hash is
// never included.
type UserResponse struct {
	ID                     int64      `json:"id"`
	Email                  string     `json:"email"`
	IsOrganiser            bool       `json:"is_organiser"`
	MealPreference         *string    `json:"meal_preference"`
	ParticipationStartTime *time.Time `json:"participation_start_time"`
	ParticipationEndTime   *time.Time `json:"participation_end_time"`
	Meals                  []string   `json:"meals"`
	CreatedAt              time.Time  `json:"created_at"`
}

// RoleResponse reports the caller's organiser flag.
type RoleResponse struct {
	IsOrganiser bool `json:"is_organiser"`
}

// ToUserResponse converts a model.User to its API representation.
func ToUserResponse(u *model.User) UserResponse {
	var pref *string
	if u.MealPreference != nil {
		s := string(*u.MealPreference)
		pref = &s
	}

	meals := make([]string, 0, len(u.Meals))
	for _, m := range u.Meals {
		meals = append(meals, string(m.MealTime))
	}

	return UserResponse{
		ID:                     u.ID,
		Email:                  u.Email,
		IsOrganiser:            u.IsOrganiser,
		MealPreference:         pref,
		ParticipationStartTime: u.ParticipationStart,
		ParticipationEndTime:   u.ParticipationEnd,
		Meals:                  meals,
		CreatedAt:              u.CreatedAt,
	}
}

// ToUserListResponse converts a slice of users.
func ToUserListResponse(users []*model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
