package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hazard-watch/internal/engine/actors"
	"hazard-watch/internal/middleware"
)

// RegisterUserRequest represents a registration request
type RegisterUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	Password    string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ScoreRequest represents a minigame score submission
type ScoreRequest struct {
	Score int `json:"score"`
}

// HandleUserRegistration creates a new user profile
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetAccountActor(), &actors.RegisterUserMsg{
			Email:       req.Email,
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
			Password:    req.Password,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to register user: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleUserLogin authenticates a user and issues a JWT
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetAccountActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Login failed: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleUserProfile returns the authenticated user's profile
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
		if !ok {
			http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
			return
		}

		result, err := s.ask(s.Engine.GetAccountActor(), &actors.GetProfileMsg{Email: userEmail})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get profile: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleScore records a minigame score for the authenticated user
func (s *Server) HandleScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
		if !ok {
			http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
			return
		}

		var req ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetRewardActor(), &actors.RecordScoreMsg{
			UserEmail: userEmail,
			Score:     req.Score,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to record score: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleBalance returns the authenticated user's spendable point balance
func (s *Server) HandleBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
		if !ok {
			http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
			return
		}

		result, err := s.ask(s.Engine.GetRewardActor(), &actors.GetBalanceMsg{UserEmail: userEmail})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get balance: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}
