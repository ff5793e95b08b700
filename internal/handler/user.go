package handler

import (
	"net/http"

	"github.com/pkordes/erj-report/internal/domain"
)

func userKey(r *http.Request) (string, error) {
	var key string
	err := pathParam(r, "key", &key)
	return key, err
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u domain.User
	if err := decodeBody(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.users.Create(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUser handles GET /users/{key}, where key is an employee id or an email.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateUser handles PUT /users/{key}.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var u domain.User
	if err := decodeBody(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.users.Update(r.Context(), key, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser handles DELETE /users/{key}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	key, err := userKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
