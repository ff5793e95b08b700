package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/handler"
)

// mockDiscountServicer is a test double for handler.DiscountServicer.
type mockDiscountServicer struct {
	list        func(ctx context.Context, query, typ string) ([]domain.Discount, error)
	importTable func(ctx context.Context, r io.Reader) ([]domain.Discount, error)
	reset       func(ctx context.Context) ([]domain.Discount, error)
}

func (m *mockDiscountServicer) List(ctx context.Context, query, typ string) ([]domain.Discount, error) {
	return m.list(ctx, query, typ)
}
func (m *mockDiscountServicer) Import(ctx context.Context, r io.Reader) ([]domain.Discount, error) {
	return m.importTable(ctx, r)
}
func (m *mockDiscountServicer) Reset(ctx context.Context) ([]domain.Discount, error) {
	return m.reset(ctx)
}

var _ handler.DiscountServicer = (*mockDiscountServicer)(nil)

func newDiscountHandler(svc handler.DiscountServicer) http.Handler {
	return handler.NewServer(nil, nil, nil, svc, nil, nil).Routes()
}

var exemption = domain.Discount{Code: "100", Name: "Straż Graniczna", Type: domain.DiscountExemption, Value: "100"}

func TestListDiscounts_passesFilters(t *testing.T) {
	var gotQ, gotType string
	h := newDiscountHandler(&mockDiscountServicer{
		list: func(_ context.Context, q, typ string) ([]domain.Discount, error) {
			gotQ, gotType = q, typ
			return []domain.Discount{exemption}, nil
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/discounts?q=stra%C5%BC&type=exemption", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "straż", gotQ)
	assert.Equal(t, "exemption", gotType)

	var body handler.DiscountsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Discounts, 1)
	assert.Equal(t, "100", body.Discounts[0].Code)
	assert.Equal(t, "Zwolnienie 100%", body.Discounts[0].DisplayValue)
}

func TestListDiscounts_noFilters(t *testing.T) {
	h := newDiscountHandler(&mockDiscountServicer{
		list: func(_ context.Context, q, typ string) ([]domain.Discount, error) {
			assert.Empty(t, q)
			assert.Empty(t, typ)
			return []domain.Discount{}, nil
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/discounts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"discounts":[]}`, rec.Body.String())
}

func TestImportDiscounts_passesCSV(t *testing.T) {
	var got string
	h := newDiscountHandler(&mockDiscountServicer{
		importTable: func(_ context.Context, r io.Reader) ([]domain.Discount, error) {
			b, err := io.ReadAll(r)
			got = string(b)
			return []domain.Discount{{Code: "51", Name: "Student", Type: domain.DiscountPercent, Value: "51"}}, err
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/discounts", strings.NewReader("51;Student;percent;51\n")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "51;Student;percent;51\n", got)
	assert.Contains(t, rec.Body.String(), `"displayValue":"51%"`)
}

func TestImportDiscounts_emptyFileIs422(t *testing.T) {
	h := newDiscountHandler(&mockDiscountServicer{
		importTable: func(context.Context, io.Reader) ([]domain.Discount, error) {
			return nil, domain.NewFieldError("body", "no valid discount lines")
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodPut, "/discounts", strings.NewReader("\n")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Code)
}

func TestResetDiscounts_forbidden(t *testing.T) {
	h := newDiscountHandler(&mockDiscountServicer{
		reset: func(context.Context) ([]domain.Discount, error) {
			return nil, domain.ErrForbidden
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/discounts/reset", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResetDiscounts(t *testing.T) {
	h := newDiscountHandler(&mockDiscountServicer{
		reset: func(context.Context) ([]domain.Discount, error) {
			return []domain.Discount{exemption}, nil
		},
	})

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/discounts/reset", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"100"`)
}
