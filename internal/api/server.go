package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aslanlabs/aslan-auto-trader/internal/engine"
	"github.com/aslanlabs/aslan-auto-trader/internal/policy"
	"github.com/aslanlabs/aslan-auto-trader/internal/repository"
	"github.com/aslanlabs/aslan-auto-trader/internal/vault"
)

const maxQueryLimit = 1000

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Server is the operator-facing REST surface. All state-changing routes act
// on behalf of the single operator wallet.
type Server struct {
	pool       *pgxpool.Pool
	execRepo   *repository.ExecutionRepo
	policies   *policy.Store
	budget     *policy.Tracker
	registry   *vault.Registry
	gate       *engine.Gate
	operator   common.Address
	httpServer *http.Server
	apiKey     string
}

func NewServer(
	pool *pgxpool.Pool,
	policies *policy.Store,
	budget *policy.Tracker,
	registry *vault.Registry,
	gate *engine.Gate,
	operator common.Address,
	port int,
	apiKey, corsOrigin string,
) *Server {
	s := &Server{
		pool:     pool,
		execRepo: repository.NewExecutionRepo(pool),
		policies: policies,
		budget:   budget,
		registry: registry,
		gate:     gate,
		operator: operator,
		apiKey:   apiKey,
	}

	mux := http.NewServeMux()

	// Policy routes
	mux.HandleFunc("GET /v1/policy", s.handlePolicyGet)
	mux.HandleFunc("PUT /v1/policy", s.handlePolicyUpdate)
	mux.HandleFunc("POST /v1/policy/emergency-stop", s.handleEmergencyStop)
	mux.HandleFunc("POST /v1/policy/reset-daily", s.handleResetDaily)
	mux.HandleFunc("GET /v1/budget", s.handleBudget)

	// Vault routes
	mux.HandleFunc("POST /v1/vault/enable", s.handleVaultEnable)
	mux.HandleFunc("POST /v1/vault/disable", s.handleVaultDisable)
	mux.HandleFunc("PUT /v1/vault/limits", s.handleVaultLimits)
	mux.HandleFunc("POST /v1/vault/tokens", s.handleVaultAddToken)
	mux.HandleFunc("DELETE /v1/vault/tokens/{address}", s.handleVaultRemoveToken)
	mux.HandleFunc("POST /v1/vault/deposit", s.handleVaultDeposit)
	mux.HandleFunc("POST /v1/vault/withdraw", s.handleVaultWithdraw)
	mux.HandleFunc("GET /v1/vault/balance/{token}", s.handleVaultBalance)
	mux.HandleFunc("GET /v1/vault/config", s.handleVaultConfig)

	// Execution routes
	mux.HandleFunc("GET /v1/executions/today", s.handleExecutionsToday)
	mux.HandleFunc("GET /v1/executions/day/{date}", s.handleExecutionsByDay)
	mux.HandleFunc("GET /v1/executions/all", s.handleAllExecutions)
	mux.HandleFunc("GET /v1/executions/stats", s.handleExecutionStats)
	mux.HandleFunc("POST /v1/execute", s.handleExecute)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// parseAmount parses a base-unit amount sent as a decimal string.
func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q, expected a base-unit integer", s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
