package handler

import (
	"net/http"

	"github.com/pkordes/erj-report/internal/domain"
)

// CreateReportRequest is the optional body of POST /reports.
type CreateReportRequest struct {
	Kind domain.ReportKind `json:"kind"`
}

// TakeOverRequest is the body of POST /reports/takeover.
type TakeOverRequest struct {
	TrainNumber string `json:"trainNumber"`
	Date        string `json:"date"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ReportList is the body of GET /reports.
type ReportList struct {
	Data       []domain.Report `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// CreateReport handles POST /reports. An empty body creates a trip report.
func (s *Server) CreateReport(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req CreateReportRequest
	if len(b) > 0 {
		if err := decodeBytes(b, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	created, err := s.reports.Create(r.Context(), req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListReports handles GET /reports.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		s.writeError(w, r, err)
		return
	}

	params := domain.NewPaginationParams(page, limit)
	reports, total, err := s.reports.ListPaged(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportList{
		Data:       reports,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetReport handles GET /reports/{number}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.reports.Get(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ImportReport handles POST /reports/import with a full report document.
func (s *Server) ImportReport(w http.ResponseWriter, r *http.Request) {
	var in domain.Report
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.reports.Import(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// TakeOverReport handles POST /reports/takeover.
func (s *Server) TakeOverReport(w http.ResponseWriter, r *http.Request) {
	var req TakeOverRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.reports.TakeOver(r.Context(), req.TrainNumber, req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// UpdateGeneral handles PUT /reports/{number}/general (section A).
func (s *Server) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var g domain.General
	if err := decodeBody(r, &g); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.reports.UpdateGeneral(r.Context(), number, g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ExportReport handles GET /reports/{number}/export?format=json|csv|xlsx.
// The rendered file is sent as an attachment.
func (s *Server) ExportReport(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		s.writeError(w, r, err)
		return
	}
	f := domain.FormatJSON
	if format != nil {
		f = domain.ExportFormat(*format)
	}

	out, err := s.reports.Export(r.Context(), number, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(out.Body)
}
