package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	assetledger "assetledger/contexts/tokenization/asset-ledger"
	domainerrors "assetledger/contexts/tokenization/asset-ledger/domain/errors"
	ledgerhttp "assetledger/contexts/tokenization/asset-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "assetledger/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	ledger assetledger.Module
}

func New(ledger assetledger.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		ledger: ledger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/assets", s.handleCreateAsset)
	s.mux.HandleFunc("GET /v1/assets/{asset_id}", s.handleGetAsset)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/reconfigure", s.handleReconfigureAsset)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/opt-in", s.handleOptIn)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/opt-out", s.handleOptOut)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/transfers", s.handleTransfer)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/freeze", s.handleFreeze)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/revoke", s.handleRevoke)
	s.mux.HandleFunc("POST /v1/assets/{asset_id}/destroy", s.handleDestroyAsset)
	s.mux.HandleFunc("GET /v1/assets/{asset_id}/holdings", s.handleListAssetHoldings)
	s.mux.HandleFunc("GET /v1/assets/{asset_id}/holdings/{account}", s.handleGetHolding)
	s.mux.HandleFunc("GET /v1/accounts/{account}/holdings", s.handleListAccountHoldings)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CreateAssetHandler(
		r.Context(),
		caller,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.GetAssetHandler(r.Context(), assetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReconfigureAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.ReconfigureAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.ReconfigureAssetHandler(r.Context(), caller, assetID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOptIn(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	resp, err := s.ledger.Handler.OptInHandler(r.Context(), caller, assetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleOptOut(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	resp, err := s.ledger.Handler.OptOutHandler(r.Context(), caller, assetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.TransferHandler(r.Context(), caller, assetID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.FreezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.FreezeHandler(r.Context(), caller, assetID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.RevokeHandler(r.Context(), caller, assetID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDestroyAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}

	resp, err := s.ledger.Handler.DestroyAssetHandler(r.Context(), caller, assetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAssetHoldings(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.ListAssetHoldingsHandler(r.Context(), assetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	account := r.PathValue("account")
	resp, err := s.ledger.Handler.GetHoldingHandler(r.Context(), assetID, account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAccountHoldings(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	resp, err := s.ledger.Handler.ListAccountHoldingsHandler(r.Context(), account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Account-Id"))
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return "", false
	}
	return caller, true
}

func parseAssetID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("asset_id")
	assetID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || assetID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_asset_id", "asset_id must be a positive integer")
		return 0, false
	}
	return assetID, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidParameters),
		errors.Is(err, domainerrors.ErrZeroAmount):
		writeError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyKeyMissing):
		writeError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domainerrors.ErrAccountFrozen):
		writeError(w, http.StatusForbidden, "account_frozen", err.Error())
	case errors.Is(err, domainerrors.ErrFieldLocked):
		writeError(w, http.StatusConflict, "field_locked", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyOptedIn):
		writeError(w, http.StatusConflict, "already_opted_in", err.Error())
	case errors.Is(err, domainerrors.ErrNotOptedIn):
		writeError(w, http.StatusConflict, "not_opted_in", err.Error())
	case errors.Is(err, domainerrors.ErrNonzeroBalance):
		writeError(w, http.StatusConflict, "nonzero_balance", err.Error())
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, domainerrors.ErrSupplyNotConsolidated):
		writeError(w, http.StatusConflict, "supply_not_consolidated", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
