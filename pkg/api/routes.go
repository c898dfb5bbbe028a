package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing. The literal /filters and
	// /diets patterns take precedence over the {id} wildcard.
	mux.HandleFunc("GET /api/food/search", s.HandleFoodSearch)
	mux.HandleFunc("GET /api/recipes/search", s.HandleRecipeSearch)
	mux.HandleFunc("GET /api/recipes/filters", s.HandleRecipeFilters)
	mux.HandleFunc("GET /api/recipes/diets", s.HandleDietGroups)
	mux.HandleFunc("GET /api/recipes/{id}", s.HandleRecipeByID)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
