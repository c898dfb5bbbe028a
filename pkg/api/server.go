// Package api exposes the lookup service over HTTP. The handlers are thin:
// parameter parsing and status-code mapping live here, every query decision
// lives in pkg/query and pkg/storage.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/klauspost/compress/gzhttp"
	"github.com/quantumgrove/calosync/pkg/log"
	"github.com/quantumgrove/calosync/pkg/storage"
)

type Server struct {
	mu      sync.RWMutex
	food    *storage.FoodStore
	recipes *storage.RecipeStore

	maxPerPage int
	log        *log.Logger
}

func NewServer(food *storage.FoodStore, recipes *storage.RecipeStore, maxPerPage int) *Server {
	return &Server{
		food:       food,
		recipes:    recipes,
		maxPerPage: maxPerPage,
		log:        log.ForService("api"),
	}
}

// Handler returns the fully wired HTTP handler: routes, CORS and gzip
// response compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return CorsMiddleware(gzhttp.GzipHandler(mux))
}

// SetStores swaps in freshly opened stores and closes the previous ones.
// Used when the dataset files are replaced on disk.
func (s *Server) SetStores(food *storage.FoodStore, recipes *storage.RecipeStore) {
	s.mu.Lock()
	oldFood, oldRecipes := s.food, s.recipes
	s.food, s.recipes = food, recipes
	s.mu.Unlock()

	if oldFood != nil && oldFood != food {
		if err := oldFood.Close(); err != nil {
			s.log.Warnf("closing replaced food store: %v", err)
		}
	}
	if oldRecipes != nil && oldRecipes != recipes {
		if err := oldRecipes.Close(); err != nil {
			s.log.Warnf("closing replaced recipe store: %v", err)
		}
	}
}

// Close releases both stores. The server must not serve requests afterwards.
func (s *Server) Close() {
	s.mu.Lock()
	food, recipes := s.food, s.recipes
	s.food, s.recipes = nil, nil
	s.mu.Unlock()

	if food != nil {
		if err := food.Close(); err != nil {
			s.log.Warnf("closing food store: %v", err)
		}
	}
	if recipes != nil {
		if err := recipes.Close(); err != nil {
			s.log.Warnf("closing recipe store: %v", err)
		}
	}
}

func (s *Server) stores() (*storage.FoodStore, *storage.RecipeStore) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.food, s.recipes
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
