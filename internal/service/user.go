// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes the response envelope
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes SQLite
//
// Services accept a repository INTERFACE, not the concrete sqlite type, so
// tests can hand them an in-memory fake. Services return apperror values —
// never HTTP status codes; the handler is the only layer that knows about
// HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
)

// User listing defaults. The user listing is ALWAYS paginated — when the
// client sends nothing usable, page 1 of 10 comes back. (Comments behave
// differently; see CommentService.List.)
const (
	DefaultUserPage  = 1
	DefaultUserLimit = 10
)

// Pagination is the metadata block attached to the user listing. Total counts
// the filtered set before the page was cut, and Pages = ceil(Total/Limit).
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// UserService handles business logic for users and their nested relations.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService. The caller decides which repository
// implementation to inject — SQLite in production, a fake in tests.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// List returns one page of users matching the search term, newest first.
// search matches name, username, or email as a case-insensitive substring;
// blank (after trimming) means no text filter. Non-positive page/limit fall
// back to the defaults. A page past the end of the result set is an empty
// page, not an error.
func (s *UserService) List(ctx context.Context, search string, page, limit int) ([]model.User, Pagination, error) {
	if page <= 0 {
		page = DefaultUserPage
	}
	if limit <= 0 {
		limit = DefaultUserLimit
	}

	users, total, err := s.repo.List(ctx, repository.UserQuery{
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, Pagination{}, fmt.Errorf("listing users: %w", err)
	}

	return users, Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// GetByID retrieves a user with address, geo, and company hydrated.
// Returns apperror.ErrNotFound if no such user exists.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and saves a new user, creating any nested address/geo/
// company in the same transaction. Duplicate username or email surfaces as
// apperror.ErrConflict from the repository.
func (s *UserService) Create(ctx context.Context, data model.NewUser) (*model.User, error) {
	data.Name = strings.TrimSpace(data.Name)
	data.Username = strings.TrimSpace(data.Username)
	data.Email = strings.TrimSpace(data.Email)

	if data.Name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if data.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if data.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.repo.Create(ctx, data)
	if err != nil {
		s.logger.Error("failed to create user",
			slog.String("username", data.Username),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Update applies a partial update. Fields absent from the payload stay as
// they are — an empty payload changes nothing. Nested relations follow the
// upsert-by-presence rule: the patch is resolved against the current state
// into one instruction per relation (unchanged, update in place, or create),
// then applied in a single transaction.
//
// The read-then-write existence check is not atomic with a concurrent delete;
// the repository maps that race to the same NotFound this check produces.
func (s *UserService) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, patch.ChangeSet(current))
	if err != nil {
		s.logger.Error("failed to update user",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user updated", slog.Int64("id", id))
	return user, nil
}

// Delete removes a user; the owned address, geo, and company rows cascade.
// Returns apperror.ErrNotFound if the user doesn't exist.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}
