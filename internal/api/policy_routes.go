package api

import (
	"fmt"
	"net/http"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

func (s *Server) handlePolicyGet(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.policies.Get(s.operator)
	if !ok {
		writeError(w, http.StatusNotFound, "no policy configured")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type policyUpdateRequest struct {
	Enabled         *bool    `json:"enabled"`
	MinConfidence   *int     `json:"minConfidence"`
	MaxDailyTrades  *int     `json:"maxDailyTrades"`
	MaxDailyLossPct *float64 `json:"maxDailyLossPct"`
}

// handlePolicyUpdate patches the off-chain gate fields. Spend limits and the
// approved-token set are vault-backed and change through the vault routes.
func (s *Server) handlePolicyUpdate(w http.ResponseWriter, r *http.Request) {
	var req policyUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, ok := s.policies.Get(s.operator)
	if !ok {
		cfg = &models.PolicyConfig{}
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.MinConfidence != nil {
		if *req.MinConfidence < 0 || *req.MinConfidence > 100 {
			writeError(w, http.StatusBadRequest, "minConfidence must be between 0 and 100")
			return
		}
		cfg.MinConfidence = *req.MinConfidence
	}
	if req.MaxDailyTrades != nil {
		if *req.MaxDailyTrades < 0 {
			writeError(w, http.StatusBadRequest, "maxDailyTrades must not be negative")
			return
		}
		cfg.MaxDailyTrades = *req.MaxDailyTrades
	}
	if req.MaxDailyLossPct != nil {
		cfg.MaxDailyLossPct = *req.MaxDailyLossPct
	}

	if err := s.policies.Upsert(r.Context(), s.operator, cfg); err != nil {
		fmt.Printf("Error updating policy: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to update policy")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleEmergencyStop(w http.ResponseWriter, r *http.Request) {
	if err := s.policies.EmergencyStop(r.Context(), s.operator); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleResetDaily(w http.ResponseWriter, r *http.Request) {
	s.budget.ResetDailyStats(s.operator)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.budget.Stats(s.operator))
}
