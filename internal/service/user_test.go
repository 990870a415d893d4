package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository. It records the last
// query and change set it received so tests can assert on what the service
// derived, not just on the end state.
type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64

	lastQuery     repository.UserQuery
	lastChangeSet model.UserChangeSet
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) List(_ context.Context, q repository.UserQuery) ([]model.User, int, error) {
	f.lastQuery = q

	matched := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		if q.Search != "" {
			s := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(u.Name), s) &&
				!strings.Contains(strings.ToLower(u.Username), s) &&
				!strings.Contains(strings.ToLower(u.Email), s) {
				continue
			}
		}
		matched = append(matched, *u)
	}
	// id descending stands in for created_at descending — the fake assigns
	// ids in creation order.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	offset := (q.Page - 1) * q.Limit
	if offset >= total {
		return []model.User{}, total, nil
	}
	matched = matched[offset:]
	if q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Create(_ context.Context, data model.NewUser) (*model.User, error) {
	f.nextID++
	u := &model.User{
		ID:       f.nextID,
		Name:     data.Name,
		Username: data.Username,
		Email:    data.Email,
		Phone:    data.Phone,
		Website:  data.Website,
	}
	if data.Address != nil {
		u.Address = &model.Address{
			ID: f.nextID, Street: data.Address.Street, City: data.Address.City,
			Suite: data.Address.Suite, Zipcode: data.Address.Zipcode, UserID: u.ID,
		}
		if data.Address.Geo != nil {
			u.Address.Geo = &model.Geo{
				ID: f.nextID, Lat: data.Address.Geo.Lat, Lng: data.Address.Geo.Lng,
				AddressID: u.Address.ID,
			}
		}
	}
	if data.Company != nil {
		u.Company = &model.Company{
			ID: f.nextID, Name: data.Company.Name,
			CatchPhrase: data.Company.CatchPhrase, BS: data.Company.BS, UserID: u.ID,
		}
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int64, cs model.UserChangeSet) (*model.User, error) {
	f.lastChangeSet = cs
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&u.Name, cs.Name)
	apply(&u.Username, cs.Username)
	apply(&u.Email, cs.Email)
	if cs.Phone != nil {
		u.Phone = cs.Phone
	}
	if cs.Website != nil {
		u.Website = cs.Website
	}
	switch cs.Address.Op {
	case model.RelationCreate:
		u.Address = &model.Address{UserID: id}
		fallthrough
	case model.RelationUpdate:
		apply(&u.Address.Street, cs.Address.Street)
		apply(&u.Address.City, cs.Address.City)
		if cs.Address.Suite != nil {
			u.Address.Suite = cs.Address.Suite
		}
		if cs.Address.Zipcode != nil {
			u.Address.Zipcode = cs.Address.Zipcode
		}
		switch cs.Address.Geo.Op {
		case model.RelationCreate:
			u.Address.Geo = &model.Geo{}
			fallthrough
		case model.RelationUpdate:
			apply(&u.Address.Geo.Lat, cs.Address.Geo.Lat)
			apply(&u.Address.Geo.Lng, cs.Address.Geo.Lng)
		}
	}
	switch cs.Company.Op {
	case model.RelationCreate:
		u.Company = &model.Company{UserID: id}
		fallthrough
	case model.RelationUpdate:
		apply(&u.Company.Name, cs.Company.Name)
		if cs.Company.CatchPhrase != nil {
			u.Company.CatchPhrase = cs.Company.CatchPhrase
		}
		if cs.Company.BS != nil {
			u.Company.BS = cs.Company.BS
		}
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("User", id)
	}
	delete(f.users, id)
	return nil
}

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewUserService(repo, logger), repo
}

func strPtr(s string) *string { return &s }

func seedUsers(t *testing.T, svc *UserService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.Create(context.Background(), model.NewUser{
			Name:     fmt.Sprintf("User %02d", i),
			Username: fmt.Sprintf("user%02d", i),
			Email:    fmt.Sprintf("user%02d@x.com", i),
		})
		if err != nil {
			t.Fatalf("setup: Create() error = %v", err)
		}
	}
}

func TestUserList_AppliesDefaults(t *testing.T) {
	svc, repo := newTestUserService(t)
	seedUsers(t, svc, 23)

	users, pg, err := svc.List(context.Background(), "", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if repo.lastQuery.Page != 1 || repo.lastQuery.Limit != 10 {
		t.Errorf("repo query = %+v, want page=1 limit=10 defaults", repo.lastQuery)
	}
	if len(users) != 10 {
		t.Errorf("got %d users, want 10", len(users))
	}
	if pg != (Pagination{Total: 23, Page: 1, Limit: 10, Pages: 3}) {
		t.Errorf("pagination = %+v, want {23 1 10 3}", pg)
	}
}

func TestUserList_PaginationMath(t *testing.T) {
	svc, _ := newTestUserService(t)
	seedUsers(t, svc, 23)

	users, pg, err := svc.List(context.Background(), "", 3, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("page 3: got %d users, want 3", len(users))
	}
	if pg.Pages != 3 {
		t.Errorf("Pages = %d, want 3", pg.Pages)
	}

	// Past the end: empty page, no error.
	users, _, err = svc.List(context.Background(), "", 99, 10)
	if err != nil {
		t.Fatalf("List(page=99) error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("page 99: got %d users, want 0", len(users))
	}
}

func TestUserList_TrimsSearch(t *testing.T) {
	svc, repo := newTestUserService(t)
	seedUsers(t, svc, 3)

	if _, _, err := svc.List(context.Background(), "  user01  ", 1, 10); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.lastQuery.Search != "user01" {
		t.Errorf("repo search = %q, want trimmed %q", repo.lastQuery.Search, "user01")
	}

	// Whitespace-only search means no text filter at all.
	users, _, err := svc.List(context.Background(), "   ", 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.lastQuery.Search != "" {
		t.Errorf("repo search = %q, want empty", repo.lastQuery.Search)
	}
	if len(users) != 3 {
		t.Errorf("blank search: got %d users, want all 3", len(users))
	}
}

func TestUserCreate_Validation(t *testing.T) {
	svc, _ := newTestUserService(t)

	tests := []struct {
		name string
		data model.NewUser
	}{
		{"missing name", model.NewUser{Username: "a", Email: "a@x.com"}},
		{"missing username", model.NewUser{Name: "A", Email: "a@x.com"}},
		{"missing email", model.NewUser{Name: "A", Username: "a"}},
		{"whitespace-only name", model.NewUser{Name: "   ", Username: "a", Email: "a@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.data)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUserUpdate_EmptyPatchIsIdempotent(t *testing.T) {
	svc, _ := newTestUserService(t)
	created, err := svc.Create(context.Background(), model.NewUser{
		Name: "A", Username: "a", Email: "a@x.com", Phone: strPtr("123"),
	})
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, model.UserPatch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "A" || updated.Username != "a" || updated.Email != "a@x.com" {
		t.Errorf("empty patch changed fields: %+v", updated)
	}
	if updated.Phone == nil || *updated.Phone != "123" {
		t.Errorf("Phone = %v, want preserved", updated.Phone)
	}
}

func TestUserUpdate_DerivesRelationOpsFromCurrentState(t *testing.T) {
	svc, repo := newTestUserService(t)

	// User without an address: patching address must derive a Create.
	created, err := svc.Create(context.Background(), model.NewUser{
		Name: "A", Username: "a", Email: "a@x.com",
	})
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	patch := model.UserPatch{Address: &model.AddressPatch{City: strPtr("Berlin")}}
	if _, err := svc.Update(context.Background(), created.ID, patch); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repo.lastChangeSet.Address.Op != model.RelationCreate {
		t.Errorf("Address.Op = %v, want RelationCreate", repo.lastChangeSet.Address.Op)
	}

	// Second update against the now-existing address must derive an Update.
	if _, err := svc.Update(context.Background(), created.ID, patch); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repo.lastChangeSet.Address.Op != model.RelationUpdate {
		t.Errorf("Address.Op = %v, want RelationUpdate", repo.lastChangeSet.Address.Op)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Update(context.Background(), 404, model.UserPatch{Name: strPtr("X")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	svc, _ := newTestUserService(t)
	created, err := svc.Create(context.Background(), model.NewUser{
		Name: "A", Username: "a", Email: "a@x.com",
	})
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("double delete: error = %v, want ErrNotFound", err)
	}
}
