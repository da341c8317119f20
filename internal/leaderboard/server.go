package leaderboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/wwpm/internal/model"
)

const maxBodySize = 4 << 10

// Scores is the persistence the service needs.
type Scores interface {
	TopScores(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	InsertScore(ctx context.Context, username string, score int) (model.LeaderboardEntry, error)
}

// Server serves the leaderboard JSON API and the high-score page.
type Server struct {
	scores Scores
	router chi.Router
}

// NewServer wires routes over scores.
func NewServer(scores Scores) *Server {
	s := &Server{scores: scores}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	s.RegisterRoutes(r)
	s.router = r
	return s
}

// RegisterRoutes mounts the leaderboard routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.page)
	r.Get("/healthz", s.health)
	r.Get(apiPath, s.list)
	r.Post(apiPath, s.create)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	s.router.ServeHTTP(w, r)
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	entries, err := s.scores.TopScores(r.Context(), TopN)
	if err != nil {
		log.Printf("error fetching scores: %v", err)
		entries = nil
	}
	render(w, r, highScoresPage(entries))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	entries, err := s.scores.TopScores(r.Context(), TopN)
	if err != nil {
		log.Printf("error fetching scores: %v", err)
		jsonError(w, "error fetching scores", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string `json:"username"`
		Score    *int    `json:"score"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Username == nil || strings.TrimSpace(*req.Username) == "" || req.Score == nil {
		jsonError(w, "username and score are required", http.StatusBadRequest)
		return
	}
	if *req.Score < 0 {
		jsonError(w, "score must be non-negative", http.StatusBadRequest)
		return
	}

	entry, err := s.scores.InsertScore(r.Context(), *req.Username, *req.Score)
	if err != nil {
		log.Printf("error inserting score: %v", err)
		jsonError(w, "error inserting score", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, []model.LeaderboardEntry{entry})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, errorResponse{Error: msg})
}
