package handler

import (
	"net/http"

	"github.com/pkordes/erj-report/internal/domain"
)

// AddVehicle handles POST /reports/{number}/manifest/vehicles.
func (s *Server) AddVehicle(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var v domain.Vehicle
	if err := decodeBody(r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.reports.AddVehicle(r.Context(), number, v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateVehicle handles PUT /reports/{number}/manifest/vehicles/{key}.
func (s *Server) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := entryKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var v domain.Vehicle
	if err := decodeBody(r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.reports.UpdateVehicle(r.Context(), number, key, v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteVehicle handles DELETE /reports/{number}/manifest/vehicles/{key}.
func (s *Server) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := entryKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reports.DeleteVehicle(r.Context(), number, key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderVehicles handles PUT /reports/{number}/manifest/order.
// The keys must name every vehicle exactly once; anything else is 409.
func (s *Server) ReorderVehicles(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ReorderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.reports.ReorderVehicles(r.Context(), number, req.Keys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.Manifest)
}

// UpdateManifestMeta handles PUT /reports/{number}/manifest/meta.
func (s *Server) UpdateManifestMeta(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var meta domain.ManifestMeta
	if err := decodeBody(r, &meta); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.reports.UpdateManifestMeta(r.Context(), number, meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.ManifestMeta)
}

// AnalyzeManifest handles POST /reports/{number}/manifest/analysis.
func (s *Server) AnalyzeManifest(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.reports.Analyze(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
