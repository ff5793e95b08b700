package handler

import (
	"bytes"
	"net/http"

	"github.com/pkordes/erj-report/internal/domain"
)

// DiscountView is a discount plus its printed form.
type DiscountView struct {
	domain.Discount
	DisplayValue string `json:"displayValue"`
}

// DiscountsResponse is the body of the discount endpoints.
type DiscountsResponse struct {
	Discounts []DiscountView `json:"discounts"`
}

func discountsResponse(ds []domain.Discount) DiscountsResponse {
	out := make([]DiscountView, 0, len(ds))
	for _, d := range ds {
		out = append(out, DiscountView{Discount: d, DisplayValue: d.DisplayValue()})
	}
	return DiscountsResponse{Discounts: out}
}

// ListDiscounts handles GET /discounts?q=&type=.
func (s *Server) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	var q, typ string
	if err := queryParam(r, "q", &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := queryParam(r, "type", &typ); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := s.discounts.List(r.Context(), q, typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discountsResponse(ds))
}

// ImportDiscounts handles PUT /discounts with a CSV body
// ("code;name;type;value;description" per line).
func (s *Server) ImportDiscounts(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := s.discounts.Import(r.Context(), bytes.NewReader(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discountsResponse(ds))
}

// ResetDiscounts handles POST /discounts/reset.
func (s *Server) ResetDiscounts(w http.ResponseWriter, r *http.Request) {
	ds, err := s.discounts.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discountsResponse(ds))
}
