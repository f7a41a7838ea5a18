// Command bootstrap-organiser creates (or promotes) the first organiser
// account so a fresh deployment can manage users through the API.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/attendly/attendly/internal/auth"
	"github.com/attendly/attendly/internal/model"
	"github.com/attendly/attendly/internal/repository"
)

type output struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Promoted bool   `json:"promoted"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "organiser@attendly.local", "Organiser email")
		password    = flag.String("password", "", "Organiser password (random if empty)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.EnsureMealSeed(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "seed meal slots:", err)
		os.Exit(1)
	}

	out, err := ensureOrganiser(ctx, repo, strings.ToLower(strings.TrimSpace(*email)), *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		if out.Promoted {
			fmt.Printf("promoted %s to organiser\n", out.Email)
		} else {
			fmt.Printf("created organiser %s with password %s\n", out.Email, out.Password)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureOrganiser promotes an existing account or creates a new one.
// An existing account keeps its password; the plaintext is only
// reported for accounts created here.
func ensureOrganiser(ctx context.Context, repo *repository.Repository, email, password string) (*output, error) {
	existing, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.IsOrganiser {
			return &output{UserID: existing.ID, Email: existing.Email, Promoted: true}, nil
		}
		existing.IsOrganiser = true
		if err := repo.UpdateUser(ctx, existing, nil, false); err != nil {
			return nil, fmt.Errorf("promote user: %w", err)
		}
		return &output{UserID: existing.ID, Email: existing.Email, Promoted: true}, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		IsOrganiser:  true,
	}
	if err := repo.CreateUser(ctx, user, nil); err != nil {
		return nil, fmt.Errorf("create organiser: %w", err)
	}

	return &output{UserID: user.ID, Email: user.Email, Password: password}, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
