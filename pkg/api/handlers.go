package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quantumgrove/calosync/pkg/query"
	"github.com/quantumgrove/calosync/pkg/storage"
	"github.com/quantumgrove/calosync/pkg/version"
)

const (
	defaultDietLimit = 10
	maxDietLimit     = 50
)

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version.Version,
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleFoodSearch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("q") == "" {
		s.writeError(w, http.StatusBadRequest, "missing_query", "Query parameter 'q' is required")
		return
	}

	params, err := query.ParseSearchParams(r.URL.Query(), s.maxPerPage)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	food, _ := s.stores()
	page, err := food.Search(r.Context(), params)
	if errors.Is(err, storage.ErrNoResults) {
		s.writeError(w, http.StatusNotFound, "no_results", "No food items found matching the query")
		return
	}
	if err != nil {
		s.log.Errorf("food search %q: %v", params.Query, err)
		s.writeError(w, http.StatusInternalServerError, "search_failed", "Search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) HandleRecipeSearch(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseSearchParams(r.URL.Query(), s.maxPerPage)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	_, recipes := s.stores()
	page, err := recipes.Search(r.Context(), params)
	if errors.Is(err, storage.ErrNoResults) {
		s.writeError(w, http.StatusNotFound, "no_results", "No recipes found matching the criteria")
		return
	}
	if err != nil {
		s.log.Errorf("recipe search %q: %v", params.Query, err)
		s.writeError(w, http.StatusInternalServerError, "search_failed", "Search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) HandleRecipeByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "Recipe ID must be a positive integer")
		return
	}

	_, recipes := s.stores()
	recipe, err := recipes.ByID(r.Context(), id)
	if errors.Is(err, storage.ErrNoResults) {
		s.writeError(w, http.StatusNotFound, "not_found", "Recipe not found")
		return
	}
	if err != nil {
		s.log.Errorf("recipe lookup %d: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, "lookup_failed", "Recipe lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) HandleRecipeFilters(w http.ResponseWriter, r *http.Request) {
	_, recipes := s.stores()
	inv, err := recipes.FilterInventory(r.Context())
	if err != nil {
		s.log.Errorf("filter inventory: %v", err)
		s.writeError(w, http.StatusInternalServerError, "filters_failed", "Listing filters failed")
		return
	}

	s.writeJSON(w, http.StatusOK, inv)
}

func (s *Server) HandleDietGroups(w http.ResponseWriter, r *http.Request) {
	limit := defaultDietLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDietLimit {
			s.writeError(w, http.StatusBadRequest, "invalid_limit",
				"Limit must be an integer between 1 and "+strconv.Itoa(maxDietLimit))
			return
		}
		limit = n
	}

	_, recipes := s.stores()
	groups, err := recipes.GroupByDiet(r.Context(), limit)
	if err != nil {
		s.log.Errorf("diet grouping: %v", err)
		s.writeError(w, http.StatusInternalServerError, "diets_failed", "Diet grouping failed")
		return
	}
	if len(groups) == 0 {
		s.writeError(w, http.StatusNotFound, "no_results", "No diet recommendations found")
		return
	}

	s.writeJSON(w, http.StatusOK, groups)
}
