package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hazard-watch/internal/engine/actors"
	"hazard-watch/internal/middleware"
	"hazard-watch/internal/models"
)

// CreateRewardRequest represents a request to add a reward to the catalog
type CreateRewardRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int    `json:"pointsRequired"`
	Active         bool   `json:"active"`
}

// RedeemRequest represents a reward redemption request
type RedeemRequest struct {
	RewardID    string `json:"rewardId"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateRedemptionRequest represents an administrative status change
type UpdateRedemptionRequest struct {
	UserEmail string `json:"userEmail"`
	Status    string `json:"status"` // "fulfilled" or "rejected"
}

// HandleReward handles reward catalog creation and listing
func (s *Server) HandleReward() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			var req CreateRewardRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetRewardActor(), &actors.CreateRewardMsg{
				Name:           req.Name,
				Description:    req.Description,
				PointsRequired: req.PointsRequired,
				Active:         req.Active,
			})
			if err != nil {
				http.Error(w, fmt.Sprintf("Failed to create reward: %v", err), http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		case http.MethodGet:
			result, err := s.ask(s.Engine.GetRewardActor(), &actors.ListRewardsMsg{})
			if err != nil {
				http.Error(w, "Failed to list rewards", http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleRedeem claims a reward for the authenticated user
func (s *Server) HandleRedeem() http.HandlerFunc {
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

		var req RedeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetRewardActor(), &actors.RedeemRewardMsg{
			UserEmail: userEmail,
			RewardID:  req.RewardID,
			Details: models.RedemptionDetails{
				FullName:    req.FullName,
				PhoneNumber: req.PhoneNumber,
				Address:     req.Address,
			},
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to redeem reward: %v", err), http.StatusInternalServerError)
			return
		}
		s.respond(w, result)
	}
}

// HandleRedemptionStatus returns the authenticated user's latest claim
func (s *Server) HandleRedemptionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.Metrics.IncrementRequests()

			userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
			if !ok {
				http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
				return
			}

			result, err := s.ask(s.Engine.GetRewardActor(), &actors.GetRedemptionStatusMsg{UserEmail: userEmail})
			if err != nil {
				http.Error(w, fmt.Sprintf("Failed to get redemption status: %v", err), http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		case http.MethodPatch:
			// Administrative transition: pending -> fulfilled | rejected.
			s.Metrics.IncrementRequests()

			var req UpdateRedemptionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetRewardActor(), &actors.UpdateRedemptionStatusMsg{
				UserEmail: req.UserEmail,
				Status:    models.RedemptionStatus(req.Status),
			})
			if err != nil {
				http.Error(w, fmt.Sprintf("Failed to update redemption: %v", err), http.StatusInternalServerError)
				return
			}
			s.respond(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
