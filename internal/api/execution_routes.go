package api

import (
	"fmt"
	"net/http"

	"github.com/aslanlabs/aslan-auto-trader/internal/engine"
	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// parseOutcome extracts the ?outcome= query parameter.
// Returns a *bool: nil = all, true = confirmed, false = failed.
func parseOutcome(r *http.Request) (*bool, error) {
	v := r.URL.Query().Get("outcome")
	switch v {
	case "", "all":
		return nil, nil
	case "confirmed":
		b := true
		return &b, nil
	case "failed":
		b := false
		return &b, nil
	default:
		return nil, fmt.Errorf("invalid outcome %q, expected confirmed|failed|all", v)
	}
}

func (s *Server) handleExecutionsToday(w http.ResponseWriter, r *http.Request) {
	outcome, err := parseOutcome(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.execRepo.GetByDay(r.Context(), s.operator.Hex(), models.TradingDayNow(), outcome)
	if err != nil {
		fmt.Printf("Error fetching today's executions: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch executions")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExecutionsByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	outcome, err := parseOutcome(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.execRepo.GetByDay(r.Context(), s.operator.Hex(), date, outcome)
	if err != nil {
		fmt.Printf("Error fetching executions for %s: %v\n", date, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch executions")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAllExecutions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)

	outcome, err := parseOutcome(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.execRepo.GetAll(r.Context(), s.operator.Hex(), limit, outcome)
	if err != nil {
		fmt.Printf("Error fetching executions: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch executions")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExecutionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.execRepo.GetStats(r.Context(), s.operator.Hex())
	if err != nil {
		fmt.Printf("Error fetching execution stats: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch execution stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type executeRequest struct {
	Signal       models.TradingSignal  `json:"signal"`
	Confirmation engine.ConfirmRequest `json:"confirmation"`
}

// handleExecute runs one manually confirmed execution. The signal still
// passes the full policy gate; confirmation is consent, not a bypass.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.gate.Submit(r.Context(), s.operator, &req.Signal, req.Confirmation)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}
