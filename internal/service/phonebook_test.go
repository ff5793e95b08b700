package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/repo"
	"github.com/pkordes/erj-report/internal/service"
)

// mockPhonebookRepo is a hand-written test double for repo.PhonebookRepo.
type mockPhonebookRepo struct {
	load    func(ctx context.Context) ([]domain.PhonebookEntry, error)
	replace func(ctx context.Context, entries []domain.PhonebookEntry) error
}

func (m *mockPhonebookRepo) Load(ctx context.Context) ([]domain.PhonebookEntry, error) {
	return m.load(ctx)
}
func (m *mockPhonebookRepo) Replace(ctx context.Context, entries []domain.PhonebookEntry) error {
	return m.replace(ctx, entries)
}

var _ repo.PhonebookRepo = (*mockPhonebookRepo)(nil)

func memPhonebook(seed ...domain.PhonebookEntry) (*mockPhonebookRepo, *[]domain.PhonebookEntry) {
	stored := append([]domain.PhonebookEntry{}, seed...)
	return &mockPhonebookRepo{
		load: func(context.Context) ([]domain.PhonebookEntry, error) { return stored, nil },
		replace: func(_ context.Context, entries []domain.PhonebookEntry) error {
			stored = entries
			return nil
		},
	}, &stored
}

var dispatcher = domain.PhonebookEntry{Name: "Dyżurny Kutno", Role: "dispatcher", Number: "+48 24 355 00 00", Hours: "24h"}

const phonebookCSV = "name,role,number,hours\n" +
	"Dyżurny Kutno,dispatcher,+48 24 355 00 00,24h\n" +
	"\n" +
	"Lokomotywownia,depot,+48 24 355 11 11\n"

// ---- ParsePhonebookCSV -----------------------------------------------------

func TestParsePhonebookCSV(t *testing.T) {
	got, err := service.ParsePhonebookCSV(strings.NewReader(phonebookCSV))

	require.NoError(t, err)
	assert.Equal(t, []domain.PhonebookEntry{
		dispatcher,
		{Name: "Lokomotywownia", Role: "depot", Number: "+48 24 355 11 11"},
	}, got)
}

func TestParsePhonebookCSV_NoHeader(t *testing.T) {
	got, err := service.ParsePhonebookCSV(strings.NewReader("A,B,1,C\n"))

	require.NoError(t, err)
	assert.Equal(t, []domain.PhonebookEntry{{Name: "A", Role: "B", Number: "1", Hours: "C"}}, got)
}

func TestParsePhonebookCSV_Malformed(t *testing.T) {
	_, err := service.ParsePhonebookCSV(strings.NewReader("a,\"unterminated\n"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Import ----------------------------------------------------------------

func TestPhonebookService_Import(t *testing.T) {
	m, stored := memPhonebook()
	svc := service.NewPhonebookService(m, nil, nil, "")

	got, err := svc.Import(context.Background(), strings.NewReader(phonebookCSV))

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, got, *stored)
}

func TestPhonebookService_Import_Forbidden(t *testing.T) {
	m, stored := memPhonebook(dispatcher)
	deny := &mockAuthorizer{authorize: func(_ context.Context, req domain.AccessRequest) error {
		if req.Action == domain.ActionPhonebookEdit {
			return domain.ErrForbidden
		}
		return nil
	}}
	svc := service.NewPhonebookService(m, deny, nil, "")

	_, err := svc.Import(context.Background(), strings.NewReader(phonebookCSV))

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, []domain.PhonebookEntry{dispatcher}, *stored)
}

// ---- Refresh ---------------------------------------------------------------

func TestPhonebookService_Refresh_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		_, _ = w.Write([]byte(phonebookCSV))
	}))
	defer srv.Close()

	m, stored := memPhonebook()
	svc := service.NewPhonebookService(m, nil, nil, srv.URL).WithHTTPClient(srv.Client())

	got, source, err := svc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.SourceRemote, source)
	assert.Len(t, got, 2)
	assert.Len(t, *stored, 2)
}

func TestPhonebookService_Refresh_FallsBackToStoredCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	m, _ := memPhonebook(dispatcher)
	svc := service.NewPhonebookService(m, nil, nil, srv.URL).WithHTTPClient(srv.Client())

	got, source, err := svc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.SourceLocal, source)
	assert.Equal(t, []domain.PhonebookEntry{dispatcher}, got)
}

func TestPhonebookService_Refresh_NoURL(t *testing.T) {
	m, _ := memPhonebook(dispatcher)
	svc := service.NewPhonebookService(m, nil, nil, "")

	got, source, err := svc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.SourceLocal, source)
	assert.Len(t, got, 1)
}

func TestPhonebookService_List_StoreFailure(t *testing.T) {
	svc := service.NewPhonebookService(&mockPhonebookRepo{
		load: func(context.Context) ([]domain.PhonebookEntry, error) { return nil, errDB },
	}, nil, nil, "")

	_, err := svc.List(context.Background())

	assert.ErrorIs(t, err, domain.ErrPersistence)
}
