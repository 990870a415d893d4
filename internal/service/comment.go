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

// CommentService handles business logic for comments — flat CRUD, no nested
// relations.
type CommentService struct {
	repo   repository.CommentRepository
	logger *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(repo repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{repo: repo, logger: logger}
}

// ListQuery carries the comment listing parameters. PostID and UserID mean
// "absent" when nil; a value of 0 is a real filter. Page and Limit are plain
// ints because only positive values mean anything — 0 and "absent" behave
// identically.
type ListQuery struct {
	Search string
	PostID *int64
	UserID *int64
	Page   int
	Limit  int
}

// List returns the comments matching the query, newest first.
//
// Unlike the user listing, this returns a bare slice with no pagination
// metadata, and pagination applies only when BOTH page and limit are positive
// — otherwise the full filtered set comes back. The asymmetry with users is
// the contract the frontend was built against; do not unify it here without
// changing the frontend too.
func (s *CommentService) List(ctx context.Context, q ListQuery) ([]model.Comment, error) {
	rq := repository.CommentQuery{
		Search: strings.TrimSpace(q.Search),
		PostID: q.PostID,
		UserID: q.UserID,
	}
	if q.Page > 0 && q.Limit > 0 {
		rq.Page = &q.Page
		rq.Limit = &q.Limit
	}

	comments, err := s.repo.List(ctx, rq)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// GetByID retrieves a comment. Returns apperror.ErrNotFound if absent.
func (s *CommentService) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and saves a new comment. The referenced post and user are
// soft references and are not checked for existence.
func (s *CommentService) Create(ctx context.Context, data model.NewComment) (*model.Comment, error) {
	if data.PostID == nil {
		return nil, apperror.ValidationFailed("postId", "postId is required")
	}
	if strings.TrimSpace(data.Name) == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if strings.TrimSpace(data.Email) == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if strings.TrimSpace(data.Body) == "" {
		return nil, apperror.ValidationFailed("body", "body is required")
	}

	comment, err := s.repo.Create(ctx, data)
	if err != nil {
		s.logger.Error("failed to create comment",
			slog.Int64("postId", *data.PostID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("comment created",
		slog.Int64("id", comment.ID),
		slog.Int64("postId", comment.PostID),
	)
	return comment, nil
}

// Update applies a partial update. Fields absent from the payload stay
// unchanged. userId is special-cased: an explicit null clears the
// association, while omitting the key keeps it — no other field makes that
// distinction.
func (s *CommentService) Update(ctx context.Context, id int64, patch model.CommentPatch) (*model.Comment, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	comment, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("failed to update comment",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("comment updated", slog.Int64("id", id))
	return comment, nil
}

// Delete removes a comment. Returns apperror.ErrNotFound if it doesn't exist.
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.Int64("id", id))
	return nil
}
