package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
	"github.com/sakif/user-directory/internal/service"
)

type stubCommentRepo struct {
	comments  map[int64]*model.Comment
	nextID    int64
	lastQuery repository.CommentQuery
	calls     int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[int64]*model.Comment)}
}

func (s *stubCommentRepo) List(_ context.Context, q repository.CommentQuery) ([]model.Comment, error) {
	s.calls++
	s.lastQuery = q
	out := make([]model.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCommentRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	s.calls++
	c, ok := s.comments[id]
	if !ok {
		return nil, apperror.NotFound("Comment", id)
	}
	copied := *c
	return &copied, nil
}

func (s *stubCommentRepo) Create(_ context.Context, data model.NewComment) (*model.Comment, error) {
	s.calls++
	s.nextID++
	c := &model.Comment{
		ID:     s.nextID,
		PostID: *data.PostID,
		Name:   data.Name,
		Email:  data.Email,
		Body:   data.Body,
		UserID: data.UserID,
	}
	s.comments[c.ID] = c
	return c, nil
}

func (s *stubCommentRepo) Update(_ context.Context, id int64, patch model.CommentPatch) (*model.Comment, error) {
	s.calls++
	c, ok := s.comments[id]
	if !ok {
		return nil, apperror.NotFound("Comment", id)
	}
	if patch.Body != nil {
		c.Body = *patch.Body
	}
	if patch.UserID.Set {
		if patch.UserID.Valid {
			v := patch.UserID.Value
			c.UserID = &v
		} else {
			c.UserID = nil
		}
	}
	copied := *c
	return &copied, nil
}

func (s *stubCommentRepo) Delete(_ context.Context, id int64) error {
	s.calls++
	if _, ok := s.comments[id]; !ok {
		return apperror.NotFound("Comment", id)
	}
	delete(s.comments, id)
	return nil
}

func newCommentRouter(repo repository.CommentRepository) *chi.Mux {
	logger := discardLogger()
	h := NewCommentHandler(service.NewCommentService(repo, logger), logger, false)

	r := chi.NewRouter()
	r.NotFound(NotFoundHandler())
	r.Route("/api/comments", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGetByID)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}

func TestCommentHandler_ListIsBareArray(t *testing.T) {
	repo := newStubCommentRepo()
	router := newCommentRouter(repo)

	rec, env := doRequest(t, router, http.MethodGet, "/api/comments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Comments fetched successfully", env.Message)
	// Data is an array even when empty, and there is never a pagination
	// block on this endpoint.
	assert.Equal(t, "[]", string(env.Data))
	assert.Nil(t, env.Pagination)
}

func TestCommentHandler_ListQueryTranslation(t *testing.T) {
	repo := newStubCommentRepo()
	router := newCommentRouter(repo)

	// postId=0 is a real filter; garbage userId degrades to absent; page
	// without limit does not paginate.
	_, _ = doRequest(t, router, http.MethodGet, "/api/comments?postId=0&userId=abc&page=2", "")

	q := repo.lastQuery
	require.NotNil(t, q.PostID)
	assert.Equal(t, int64(0), *q.PostID)
	assert.Nil(t, q.UserID)
	assert.Nil(t, q.Page)
	assert.Nil(t, q.Limit)

	_, _ = doRequest(t, router, http.MethodGet, "/api/comments?page=2&limit=5&search=quia", "")

	q = repo.lastQuery
	require.NotNil(t, q.Page)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 2, *q.Page)
	assert.Equal(t, 5, *q.Limit)
	assert.Equal(t, "quia", q.Search)
}

func TestCommentHandler_InvalidID(t *testing.T) {
	repo := newStubCommentRepo()
	router := newCommentRouter(repo)

	rec, env := doRequest(t, router, http.MethodGet, "/api/comments/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid comment ID", env.Message)
	assert.Zero(t, repo.calls)
}

func TestCommentHandler_Create(t *testing.T) {
	router := newCommentRouter(newStubCommentRepo())

	rec, env := doRequest(t, router, http.MethodPost, "/api/comments",
		`{"postId":1,"name":"id labore","email":"eliseo@gardner.biz","body":"laudantium enim"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Comment created successfully", env.Message)

	var c model.Comment
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, int64(1), c.PostID)
	assert.Nil(t, c.UserID)
}

func TestCommentHandler_CreateValidation(t *testing.T) {
	repo := newStubCommentRepo()
	router := newCommentRouter(repo)

	rec, env := doRequest(t, router, http.MethodPost, "/api/comments",
		`{"name":"n","email":"e@x.com","body":"b"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "postId is required", env.Message)
	assert.Equal(t, "Validation error", env.Error)
	assert.Zero(t, repo.calls)
}

func TestCommentHandler_UpdateClearsUserWithExplicitNull(t *testing.T) {
	repo := newStubCommentRepo()
	postID, userID := int64(1), int64(3)
	_, err := repo.Create(context.Background(), model.NewComment{
		PostID: &postID, Name: "n", Email: "e@x.com", Body: "b", UserID: &userID,
	})
	require.NoError(t, err)
	router := newCommentRouter(repo)

	rec, env := doRequest(t, router, http.MethodPut, "/api/comments/1", `{"userId":null}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var c model.Comment
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Nil(t, c.UserID, "explicit null must clear the association")
}

func TestCommentHandler_Delete(t *testing.T) {
	repo := newStubCommentRepo()
	postID := int64(1)
	_, err := repo.Create(context.Background(), model.NewComment{
		PostID: &postID, Name: "n", Email: "e@x.com", Body: "b",
	})
	require.NoError(t, err)
	router := newCommentRouter(repo)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/comments/1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comment deleted successfully", env.Message)

	rec, env = doRequest(t, router, http.MethodDelete, "/api/comments/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found", env.Message)
}
