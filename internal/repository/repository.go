// Package repository declares the persistence contracts the service layer
// programs against. The concrete implementation lives in repository/sqlite;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/user-directory/internal/model"
)

// UserQuery selects and pages the user listing. Limit and Page are already
// resolved to positive values by the service (defaults applied there).
type UserQuery struct {
	Search string // trimmed; empty means no text filter
	Page   int    // 1-based
	Limit  int
}

// CommentQuery selects the comment listing. PostID and UserID are equality
// filters applied whenever non-nil — a value of 0 still filters. Page/Limit
// are nil when the caller asked for the full filtered set.
type CommentQuery struct {
	Search string
	PostID *int64
	UserID *int64
	Page   *int
	Limit  *int
}

type UserRepository interface {
	// List returns one page of users plus the total count of the filtered
	// set before pagination.
	List(ctx context.Context, q UserQuery) ([]model.User, int, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, data model.NewUser) (*model.User, error)
	// Update applies a resolved change set in one transaction and returns
	// the hydrated user.
	Update(ctx context.Context, id int64, cs model.UserChangeSet) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	List(ctx context.Context, q CommentQuery) ([]model.Comment, error)
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	Create(ctx context.Context, data model.NewComment) (*model.Comment, error)
	Update(ctx context.Context, id int64, patch model.CommentPatch) (*model.Comment, error)
	Delete(ctx context.Context, id int64) error
}
