package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// ReorderRequest is the body of PUT /reports/{number}/manifest/order.
type ReorderRequest struct {
	Keys []uuid.UUID `json:"keys"`
}

// sectionTarget reads {number} and {section}.
func sectionTarget(r *http.Request) (number, section string, err error) {
	if number, err = reportNumber(r); err != nil {
		return "", "", err
	}
	if err = pathParam(r, "section", &section); err != nil {
		return "", "", err
	}
	return number, section, nil
}

// AddEntry handles POST /reports/{number}/sections/{section}.
// {section} is a section name (traction, conductors, orders, stations,
// controls, notes) or its letter (B–G).
func (s *Server) AddEntry(w http.ResponseWriter, r *http.Request) {
	number, section, err := sectionTarget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.reports.AddEntry(r.Context(), number, section, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry handles PUT /reports/{number}/sections/{section}/{key}.
func (s *Server) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	number, section, err := sectionTarget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := entryKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.reports.UpdateEntry(r.Context(), number, section, key, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /reports/{number}/sections/{section}/{key}.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	number, section, err := sectionTarget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := entryKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reports.DeleteEntry(r.Context(), number, section, key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
