package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

const commentSelect = `
	SELECT id, post_id, name, email, body, user_id, created_at, updated_at
	FROM comments`

var commentSearchColumns = []string{"name", "email", "body"}

func scanComment(row scanner) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.UserID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the filtered comments, newest first. Equality filters are
// ANDed with the text search; a filter value of 0 is a real filter, not
// "absent" — absence is a nil pointer. Pagination applies only when the query
// carries both a page and a limit; otherwise the whole filtered set comes
// back.
func (db *CommentDB) List(ctx context.Context, q repository.CommentQuery) ([]model.Comment, error) {
	var conds []string
	var args []any

	if q.PostID != nil {
		conds = append(conds, "post_id = ?")
		args = append(args, *q.PostID)
	}
	if q.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *q.UserID)
	}
	if q.Search != "" {
		cond, condArgs := searchWhere(commentSearchColumns, q.Search)
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}

	query := commentSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if q.Page != nil && q.Limit != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, *q.Limit, (*q.Page-1)*(*q.Limit))
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// GetByID retrieves a single comment by id.
func (db *CommentDB) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx, commentSelect+" WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return c, nil
}

// Create inserts a new comment. A nil UserID is stored as NULL.
func (db *CommentDB) Create(ctx context.Context, data model.NewComment) (*model.Comment, error) {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, name, email, body, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		data.PostID, data.Name, data.Email, data.Body, data.UserID, now, now,
	)
	if err != nil {
		return nil, mapError("creating comment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	return db.GetByID(ctx, id)
}

// Update overwrites the fields present in the patch and leaves the rest
// alone. userId is the one field where an explicit null means something:
// it clears the association, while an absent key keeps it.
func (db *CommentDB) Update(ctx context.Context, id int64, patch model.CommentPatch) (*model.Comment, error) {
	var set assignments
	set.addInt64("post_id", patch.PostID)
	set.addString("name", patch.Name)
	set.addString("email", patch.Email)
	set.addString("body", patch.Body)
	if patch.UserID.Set {
		if patch.UserID.Valid {
			set.add("user_id", patch.UserID.Value)
		} else {
			set.add("user_id", nil)
		}
	}
	set.add("updated_at", time.Now().UTC())

	args := append(set.args, id)
	res, err := db.conn.ExecContext(ctx,
		"UPDATE comments SET "+set.clause()+" WHERE id = ?", args...,
	)
	if err != nil {
		return nil, mapError("updating comment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("Comment", id)
	}

	return db.GetByID(ctx, id)
}

// Delete removes a comment by id.
func (db *CommentDB) Delete(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Comment", id)
	}
	return nil
}
