package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"hazard-watch/internal/engine/actors"
	"hazard-watch/internal/middleware"
	"hazard-watch/internal/models"

	"github.com/google/uuid"
)

// CreateReportRequest represents a request to publish a hazard report
type CreateReportRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	HazardType  string  `json:"hazardType"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PhotoURL    string  `json:"photoUrl"`
}

// VoteRequest represents a request to vote on a report
type VoteRequest struct {
	ReportID string `json:"reportId"`
	VoteType string `json:"voteType"` // "upvote" or "downvote"
}

// HandleReport handles report creation and lookup
func (s *Server) HandleReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
			if !ok {
				http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
				return
			}

			var req CreateReportRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetReportActor(), &actors.CreateReportMsg{
				Title:       req.Title,
				Description: req.Description,
				HazardType:  req.HazardType,
				Latitude:    req.Latitude,
				Longitude:   req.Longitude,
				AuthorEmail: userEmail,
				PhotoURL:    req.PhotoURL,
			})
			if err != nil {
				http.Error(w, fmt.Sprintf("Failed to create report: %v", err), http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		case http.MethodGet:
			reportID := r.URL.Query().Get("id")
			if reportID == "" {
				http.Error(w, "Report ID is required", http.StatusBadRequest)
				return
			}

			id, err := uuid.Parse(reportID)
			if err != nil {
				http.Error(w, "Invalid report ID format", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetReportActor(), &actors.GetReportMsg{ReportID: id})
			if err != nil {
				http.Error(w, fmt.Sprintf("Failed to get report: %v", err), http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleRecentReports returns the most recent reports for the feed
func (s *Server) HandleRecentReports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		result, err := s.ask(s.Engine.GetReportActor(), &actors.GetRecentReportsMsg{Limit: limit})
		if err != nil {
			http.Error(w, "Failed to fetch recent reports", http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleVote handles report voting. The vote identity comes from the
// JWT, never from the request body.
func (s *Server) HandleVote() http.HandlerFunc {
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

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		reportID, err := uuid.Parse(req.ReportID)
		if err != nil {
			http.Error(w, "Invalid report ID format", http.StatusBadRequest)
			return
		}

		voteType, err := models.ParseVoteType(req.VoteType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetReportActor(), &actors.CastVoteMsg{
			ReportID:  reportID,
			UserEmail: userEmail,
			VoteType:  voteType,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to process vote: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result, err := s.ask(s.Engine.GetReportActor(), &actors.GetCountsMsg{})
		if err != nil {
			http.Error(w, "Failed to get report count", http.StatusInternalServerError)
			return
		}
		reportCount, _ := result.(int)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       "healthy",
			"report_count": reportCount,
			"metrics":      s.Metrics.Snapshot(),
		})
	}
}
