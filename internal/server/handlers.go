// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/loadout-engine/internal/catalog"
	"github.com/pdiddy/loadout-engine/internal/rank"
	"github.com/pdiddy/loadout-engine/pkg/types"
)

// topResponse is the body of a category top list.
type topResponse struct {
	Mode    string               `json:"mode"`
	Range   string               `json:"range"`
	Reason  rank.Reason          `json:"reason"`
	Records []types.WeaponRecord `json:"records"`
}

// lookupResponse is the body of a category lookup.
type lookupResponse struct {
	Reason rank.Reason         `json:"reason"`
	Record *types.WeaponRecord `json:"record,omitempty"`
}

// healthResponse reports whether the server has a catalog to answer from.
type healthResponse struct {
	Status      string `json:"status"`
	TotalGuns   int    `json:"total_guns"`
	LastUpdated string `json:"last_updated"`
}

// handleSearch answers a free-text query across all categories.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", s.search.MaxResults)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	res := rank.Search(s.store.Current(), r.URL.Query().Get("q"), limit)
	status := http.StatusOK
	if res.Reason == rank.ReasonInvalidLimit {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, res)
}

// handleStats returns per-category counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, rank.Stats(s.store.Current()))
}

// handleTop returns the best-ranked records of one category.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	mode, rng := categoryParams(r)
	limit, ok := intParam(r, "limit", s.search.TopLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	recs, reason := rank.Top(s.store.Current(), mode, rng, limit)
	respondJSON(w, reasonStatus(reason), topResponse{Mode: mode, Range: rng, Reason: reason, Records: recs})
}

// handleLookup finds one weapon by name fragment inside a category.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	mode, rng := categoryParams(r)
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	rec, reason := rank.Lookup(s.store.Current(), mode, rng, name)
	resp := lookupResponse{Reason: reason}
	if reason == rank.ReasonOK {
		resp.Record = &rec
	}
	respondJSON(w, reasonStatus(reason), resp)
}

// handleHealth reports 503 until a non-empty catalog is loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.store.Current()
	resp := healthResponse{Status: "ok", TotalGuns: c.TotalCount()}
	if !c.BuiltAt.IsZero() {
		resp.LastUpdated = c.BuiltAt.Format(catalog.TimeLayout)
	}
	if c.IsEmpty() {
		resp.Status = "empty"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func reasonStatus(reason rank.Reason) int {
	switch reason {
	case rank.ReasonInvalidLimit:
		return http.StatusBadRequest
	case rank.ReasonUnknownCategory, rank.ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

// categoryParams returns the decoded mode and range path segments.
func categoryParams(r *http.Request) (mode, rng string) {
	mode = chi.URLParam(r, "mode")
	rng = chi.URLParam(r, "range")
	if v, err := url.PathUnescape(mode); err == nil {
		mode = v
	}
	if v, err := url.PathUnescape(rng); err == nil {
		rng = v
	}
	return mode, rng
}

// intParam reads an integer query parameter, falling back to def when the
// parameter is absent.
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
