package api

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

type vaultEnableRequest struct {
	MaxDailySpend  string            `json:"maxDailySpend"`
	MaxSingleTrade string            `json:"maxSingleTrade"`
	ApprovedTokens map[string]string `json:"approvedTokens"`
}

func (s *Server) handleVaultEnable(w http.ResponseWriter, r *http.Request) {
	var req vaultEnableRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dailySpend, err := parseAmount(req.MaxDailySpend)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	singleTrade, err := parseAmount(req.MaxSingleTrade)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens := make([]common.Address, 0, len(req.ApprovedTokens))
	allowances := make([]*big.Int, 0, len(req.ApprovedTokens))
	for addr, allowance := range req.ApprovedTokens {
		token, err := parseAddress(addr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		v, err := parseAmount(allowance)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tokens = append(tokens, token)
		allowances = append(allowances, v)
	}

	hash, err := s.registry.EnableAutomation(r.Context(), s.operator, dailySpend, singleTrade, tokens, allowances)
	if err != nil {
		fmt.Printf("Error enabling automation: %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

func (s *Server) handleVaultDisable(w http.ResponseWriter, r *http.Request) {
	hash, err := s.registry.DisableAutomation(r.Context(), s.operator)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

type vaultLimitsRequest struct {
	MaxDailySpend  string `json:"maxDailySpend"`
	MaxSingleTrade string `json:"maxSingleTrade"`
}

func (s *Server) handleVaultLimits(w http.ResponseWriter, r *http.Request) {
	var req vaultLimitsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dailySpend, err := parseAmount(req.MaxDailySpend)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	singleTrade, err := parseAmount(req.MaxSingleTrade)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.registry.UpdateSpendingLimits(r.Context(), s.operator, dailySpend, singleTrade)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

type vaultTokenRequest struct {
	Token     string `json:"token"`
	Allowance string `json:"allowance"`
}

func (s *Server) handleVaultAddToken(w http.ResponseWriter, r *http.Request) {
	var req vaultTokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := parseAddress(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	allowance, err := parseAmount(req.Allowance)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.registry.AddApprovedToken(r.Context(), s.operator, token, allowance)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

func (s *Server) handleVaultRemoveToken(w http.ResponseWriter, r *http.Request) {
	token, err := parseAddress(r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.registry.RemoveApprovedToken(r.Context(), s.operator, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

type vaultFundsRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
	Native bool   `json:"native"`
}

func (s *Server) handleVaultDeposit(w http.ResponseWriter, r *http.Request) {
	var req vaultFundsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var token common.Address
	if !req.Native {
		var err error
		if token, err = parseAddress(req.Token); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.registry.Deposit(r.Context(), token, amount, req.Native)
	if err != nil {
		fmt.Printf("Error depositing funds: %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

func (s *Server) handleVaultWithdraw(w http.ResponseWriter, r *http.Request) {
	var req vaultFundsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var token common.Address
	if !req.Native {
		var err error
		if token, err = parseAddress(req.Token); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.registry.Withdraw(r.Context(), s.operator, token, amount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"txHash": hash})
}

func (s *Server) handleVaultBalance(w http.ResponseWriter, r *http.Request) {
	token, err := parseAddress(r.PathValue("token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := s.registry.AvailableBalance(r.Context(), s.operator, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   token.Hex(),
		"balance": balance.String(),
	})
}

func (s *Server) handleVaultConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.registry.UserConfig(r.Context(), s.operator)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
