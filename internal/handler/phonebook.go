package handler

import (
	"bytes"
	"net/http"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/service"
)

// PhonebookResponse is the body of the phonebook endpoints.
type PhonebookResponse struct {
	Source  service.PhonebookSource `json:"source,omitempty"`
	Entries []domain.PhonebookEntry `json:"entries"`
}

// ListPhonebook handles GET /phonebook.
func (s *Server) ListPhonebook(w http.ResponseWriter, r *http.Request) {
	entries, err := s.phonebook.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PhonebookResponse{Source: service.SourceLocal, Entries: entries})
}

// ImportPhonebook handles PUT /phonebook with a CSV body
// ("name,role,number,hours" per line).
func (s *Server) ImportPhonebook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.phonebook.Import(r.Context(), bytes.NewReader(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PhonebookResponse{Source: service.SourceLocal, Entries: entries})
}

// RefreshPhonebook handles POST /phonebook/refresh. The X-Phonebook-Source
// header tells whether the remote directory or the stored copy was served.
func (s *Server) RefreshPhonebook(w http.ResponseWriter, r *http.Request) {
	entries, source, err := s.phonebook.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Phonebook-Source", string(source))
	writeJSON(w, http.StatusOK, PhonebookResponse{Source: source, Entries: entries})
}
