//go:build e2e

// Package e2e exercises a running Attendly instance end to end:
// registration, login, authenticated access, organiser management and
// logout. It needs ATTENDLY_BASE_URL (default http://localhost:8080)
// and DATABASE_URL for bootstrapping the organiser account.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/attendly/attendly/internal/auth"
	"github.com/attendly/attendly/internal/model"
	"github.com/attendly/attendly/internal/repository"
)

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type userResponse struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	IsOrganiser    bool     `json:"is_organiser"`
	MealPreference *string  `json:"meal_preference"`
	Meals          []string `json:"meals"`
}

type roleResponse struct {
	IsOrganiser bool `json:"is_organiser"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("ATTENDLY_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	suffix := time.Now().UnixNano()
	participantEmail := fmt.Sprintf("participant-%d@example.com", suffix)
	organiserEmail := fmt.Sprintf("organiser-%d@example.com", suffix)
	password := "correct-horse-battery"

	// Participant journey: register, log in, read own profile, log out.
	participant := registerParticipant(t, baseURL, participantEmail, password)
	if participant.IsOrganiser {
		t.Fatalf("fresh registration must not be an organiser")
	}

	token := login(t, baseURL, participantEmail, password)

	profile := getJSON[userResponse](t, baseURL, "/api/v1/me", token, http.StatusOK)
	if profile.Email != strings.ToLower(participantEmail) {
		t.Fatalf("profile email = %q, want %q", profile.Email, strings.ToLower(participantEmail))
	}

	role := getJSON[roleResponse](t, baseURL, "/api/v1/me/role", token, http.StatusOK)
	if role.IsOrganiser {
		t.Fatalf("participant role reports organiser")
	}

	// Participants cannot reach user management.
	doRequest(t, baseURL, "GET", "/api/v1/users", token, nil, http.StatusForbidden)

	// Organiser journey: bootstrap directly in the database, then
	// manage the participant through the API.
	bootstrapOrganiser(t, dbURL, organiserEmail, password)
	organiserToken := login(t, baseURL, organiserEmail, password)

	users := getJSON[[]userResponse](t, baseURL, "/api/v1/users", organiserToken, http.StatusOK)
	if len(users) < 2 {
		t.Fatalf("expected at least 2 users, got %d", len(users))
	}

	meat := "meat"
	updated := putJSON[userResponse](t, baseURL,
		fmt.Sprintf("/api/v1/users/%d", participant.ID),
		organiserToken,
		map[string]any{"meal_preference": meat},
		http.StatusOK,
	)
	if updated.MealPreference == nil || *updated.MealPreference != meat {
		t.Fatalf("meal_preference = %v, want meat", updated.MealPreference)
	}

	// Logout revokes the participant token.
	doRequest(t, baseURL, "POST", "/auth/logout", token, nil, http.StatusOK)
	doRequest(t, baseURL, "GET", "/api/v1/me", token, nil, http.StatusUnauthorized)

	// Logout is idempotent.
	doRequest(t, baseURL, "POST", "/auth/logout", token, nil, http.StatusOK)

	// Organiser removes the participant.
	doRequest(t, baseURL, "DELETE", fmt.Sprintf("/api/v1/users/%d", participant.ID), organiserToken, nil, http.StatusOK)
	doRequest(t, baseURL, "GET", fmt.Sprintf("/api/v1/users/%d", participant.ID), organiserToken, nil, http.StatusNotFound)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func registerParticipant(t *testing.T, baseURL, email, password string) userResponse {
	t.Helper()

	start := time.Now().UTC().Add(24 * time.Hour)
	payload := map[string]any{
		"email":                    email,
		"password":                 password,
		"meal_preference":          "vegetarian",
		"participation_start_time": start.Format(time.RFC3339),
		"participation_end_time":   start.Add(8 * time.Hour).Format(time.RFC3339),
		"meal_choices":             []string{"lunch", "dinner"},
	}

	body := doRequest(t, baseURL, "POST", "/auth/register", "", payload, http.StatusCreated)

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode registration response: %v", err)
	}
	if len(user.Meals) != 2 {
		t.Fatalf("meals = %v, want 2 entries", user.Meals)
	}
	return user
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()

	body := doRequest(t, baseURL, "POST", "/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("login returned empty token")
	}
	return resp.Token
}

// bootstrapOrganiser creates an organiser account directly against the
// database, mirroring scripts/bootstrap-organiser.
func bootstrapOrganiser(t *testing.T, dbURL, email, password string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureMealSeed(ctx); err != nil {
		t.Fatalf("seed meals: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		IsOrganiser:  true,
	}
	if err := repo.CreateUser(ctx, user, nil); err != nil {
		t.Fatalf("create organiser: %v", err)
	}
}

func getJSON[T any](t *testing.T, baseURL, path, token string, wantStatus int) T {
	t.Helper()
	body := doRequest(t, baseURL, "GET", path, token, nil, wantStatus)
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s response: %v (body: %s)", path, err, body)
	}
	return out
}

func putJSON[T any](t *testing.T, baseURL, path, token string, payload any, wantStatus int) T {
	t.Helper()
	body := doRequest(t, baseURL, "PUT", path, token, payload, wantStatus)
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s response: %v (body: %s)", path, err, body)
	}
	return out
}

func doRequest(t *testing.T, baseURL, method, path, token string, payload any, wantStatus int) []byte {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d (body: %s)", method, path, resp.StatusCode, wantStatus, body)
	}
	return body
}
