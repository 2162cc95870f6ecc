package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sollytics/provenance/internal/solana"
)

type scoreRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "walletAddress is required")
		return
	}

	report, err := s.analyzer.AnalyzeWallet(r.Context(), solana.Pubkey(req.WalletAddress))
	if err != nil {
		if errors.Is(err, solana.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWalletGraph(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	report, err := s.analyzer.WalletGraph(r.Context(), solana.Pubkey(address))
	if err != nil {
		if errors.Is(err, solana.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "graph build failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTokenGraph(w http.ResponseWriter, r *http.Request) {
	mint := mux.Vars(r)["mint"]
	deployer := r.URL.Query().Get("deployer")

	report, err := s.analyzer.TokenGraph(r.Context(), solana.Pubkey(mint), solana.Pubkey(deployer))
	if err != nil {
		if errors.Is(err, solana.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "graph build failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
