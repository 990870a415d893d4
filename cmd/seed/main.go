// Package main seeds the database with the ten JSONPlaceholder users,
// including their nested address/geo/company records. It wipes existing users
// first (comments are left alone), so it is safe to re-run.
//
// Usage:
//
//	go run ./cmd/seed
//
// Environment:
//
//	DB_PATH   SQLite file to seed (default data/directory.db)
//	SEED_URL  source of the user fixtures
//	          (default https://jsonplaceholder.typicode.com/users)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
	sqliteRepo "github.com/sakif/user-directory/internal/repository/sqlite"
)

const defaultSeedURL = "https://jsonplaceholder.typicode.com/users"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dbPath := "data/directory.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	seedURL := defaultSeedURL
	if envURL := os.Getenv("SEED_URL"); envURL != "" {
		seedURL = envURL
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		fatal(logger, "opening database", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger.Info("fetching users", slog.String("url", seedURL))
	users, err := fetchUsers(ctx, seedURL)
	if err != nil {
		fatal(logger, "fetching users", err)
	}
	logger.Info("fetched users", slog.Int("count", len(users)))

	if err := clearUsers(ctx, db); err != nil {
		fatal(logger, "clearing existing users", err)
	}

	for _, data := range users {
		created, err := db.Create(ctx, data)
		if err != nil {
			fatal(logger, fmt.Sprintf("creating user %q", data.Username), err)
		}
		logger.Info("created user",
			slog.Int64("id", created.ID),
			slog.String("name", created.Name),
		)
	}

	logger.Info("database seeded successfully", slog.Int("users", len(users)))
}

// fetchUsers downloads the fixture list. The JSONPlaceholder payload has the
// same field names as model.NewUser, so it decodes directly — the fixture ids
// are ignored and fresh ones are assigned on insert.
func fetchUsers(ctx context.Context, url string) ([]model.NewUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	var users []model.NewUser
	if err := json.NewDecoder(res.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return users, nil
}

// clearUsers deletes all existing users; addresses, geos, and companies
// cascade with them.
func clearUsers(ctx context.Context, db *sqliteRepo.DB) error {
	for {
		users, total, err := db.List(ctx, repository.UserQuery{Page: 1, Limit: 100})
		if err != nil {
			return err
		}
		if total == 0 {
			return nil
		}
		for _, u := range users {
			if err := db.Delete(ctx, u.ID); err != nil {
				return err
			}
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
