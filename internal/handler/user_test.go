package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/handler"
	"github.com/pkordes/erj-report/internal/service"
)

// mockUserServicer is a test double for handler.UserServicer.
type mockUserServicer struct {
	create func(ctx context.Context, u domain.User) (domain.User, error)
	get    func(ctx context.Context, idOrEmail string) (domain.User, error)
	list   func(ctx context.Context) ([]domain.User, error)
	update func(ctx context.Context, id string, u domain.User) (domain.User, error)
	delete func(ctx context.Context, id string) error
}

func (m *mockUserServicer) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserServicer) Get(ctx context.Context, idOrEmail string) (domain.User, error) {
	return m.get(ctx, idOrEmail)
}
func (m *mockUserServicer) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserServicer) Update(ctx context.Context, id string, u domain.User) (domain.User, error) {
	return m.update(ctx, id, u)
}
func (m *mockUserServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

// mockPhonebookServicer is a test double for handler.PhonebookServicer.
type mockPhonebookServicer struct {
	list        func(ctx context.Context) ([]domain.PhonebookEntry, error)
	importEntry func(ctx context.Context, r io.Reader) ([]domain.PhonebookEntry, error)
	refresh     func(ctx context.Context) ([]domain.PhonebookEntry, service.PhonebookSource, error)
}

func (m *mockPhonebookServicer) List(ctx context.Context) ([]domain.PhonebookEntry, error) {
	return m.list(ctx)
}
func (m *mockPhonebookServicer) Import(ctx context.Context, r io.Reader) ([]domain.PhonebookEntry, error) {
	return m.importEntry(ctx, r)
}
func (m *mockPhonebookServicer) Refresh(ctx context.Context) ([]domain.PhonebookEntry, service.PhonebookSource, error) {
	return m.refresh(ctx)
}

var _ handler.PhonebookServicer = (*mockPhonebookServicer)(nil)

var userFixture = domain.User{ID: "12345", Name: "Anna Nowak", Email: "anna@example.com", Role: domain.RoleUser, Status: domain.StatusActive}

// ---- users -----------------------------------------------------------------

func TestCreateUser_conflictIs409(t *testing.T) {
	h := handler.NewServer(nil, &mockUserServicer{
		create: func(context.Context, domain.User) (domain.User, error) {
			return domain.User{}, fmt.Errorf("service.UserService.Create: %w: user 12345 already exists", domain.ErrConflict)
		},
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/users", jsonBody(t, userFixture)))

	require.Equal(t, http.StatusConflict, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "conflict", detail.Code)
	assert.Equal(t, "conflict: user 12345 already exists", detail.Message)
}

func TestCreateUser_returns201(t *testing.T) {
	h := handler.NewServer(nil, &mockUserServicer{
		create: func(_ context.Context, u domain.User) (domain.User, error) { return u, nil },
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/users", jsonBody(t, userFixture)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, userFixture, got)
}

func TestGetUser_byEmail(t *testing.T) {
	var gotKey string
	h := handler.NewServer(nil, &mockUserServicer{
		get: func(_ context.Context, key string) (domain.User, error) {
			gotKey = key
			return userFixture, nil
		},
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/users/anna%40example.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anna@example.com", gotKey)
}

func TestListUsers(t *testing.T) {
	h := handler.NewServer(nil, &mockUserServicer{
		list: func(context.Context) ([]domain.User, error) { return []domain.User{userFixture}, nil },
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}

func TestUpdateUser_usesPathID(t *testing.T) {
	var gotID string
	h := handler.NewServer(nil, &mockUserServicer{
		update: func(_ context.Context, id string, u domain.User) (domain.User, error) {
			gotID = id
			return u, nil
		},
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/users/12345", strings.NewReader(`{"name":"Anna"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", gotID)
}

func TestDeleteUser_notFound(t *testing.T) {
	h := handler.NewServer(nil, &mockUserServicer{
		delete: func(context.Context, string) error {
			return fmt.Errorf("service.UserService.Delete: %w", domain.ErrNotFound)
		},
	}, nil, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodDelete, "/users/404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- phonebook -------------------------------------------------------------

func TestImportPhonebook_passesCSV(t *testing.T) {
	var got string
	h := handler.NewServer(nil, nil, &mockPhonebookServicer{
		importEntry: func(_ context.Context, r io.Reader) ([]domain.PhonebookEntry, error) {
			b, err := io.ReadAll(r)
			got = string(b)
			return []domain.PhonebookEntry{{Name: "A", Number: "1"}}, err
		},
	}, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/phonebook", strings.NewReader("A,,1,\n")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A,,1,\n", got)
}

func TestRefreshPhonebook_sourceHeader(t *testing.T) {
	h := handler.NewServer(nil, nil, &mockPhonebookServicer{
		refresh: func(context.Context) ([]domain.PhonebookEntry, service.PhonebookSource, error) {
			return []domain.PhonebookEntry{}, service.SourceLocal, nil
		},
	}, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/phonebook/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local", rec.Header().Get("X-Phonebook-Source"))

	var body handler.PhonebookResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, service.SourceLocal, body.Source)
	assert.NotNil(t, body.Entries)
}

func TestListPhonebook(t *testing.T) {
	h := handler.NewServer(nil, nil, &mockPhonebookServicer{
		list: func(context.Context) ([]domain.PhonebookEntry, error) {
			return []domain.PhonebookEntry{{Name: "Dyżurny", Number: "112"}}, nil
		},
	}, nil, nil, nil).Routes()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/phonebook", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dyżurny")
}
