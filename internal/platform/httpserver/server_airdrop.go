package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	airdroperrors "quinty/contexts/qualification/airdrop-engine/domain/errors"
	airdrophttp "quinty/contexts/qualification/airdrop-engine/transport/http"
	"quinty/internal/shared/ledger"
)

func writeAirdropError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, airdrophttp.ErrorResponse{Code: code, Message: message})
}

func writeAirdropDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, airdroperrors.ErrInvalidInput),
		errors.Is(err, airdroperrors.ErrDeadlineNotFuture):
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, airdroperrors.ErrEscrowMismatch),
		errors.Is(err, airdroperrors.ErrAmountTooLarge),
		errors.Is(err, airdroperrors.ErrQualifierBound),
		errors.Is(err, airdroperrors.ErrInvalidStatus):
		writeAirdropError(w, http.StatusUnprocessableEntity, "invalid_value", err.Error())
	case errors.Is(err, airdroperrors.ErrAirdropNotFound),
		errors.Is(err, airdroperrors.ErrEntryNotFound):
		writeAirdropError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, airdroperrors.ErrNotVerifier),
		errors.Is(err, airdroperrors.ErrNotOwner),
		errors.Is(err, airdroperrors.ErrNotAuthorized),
		errors.Is(err, airdroperrors.ErrNotCreator):
		writeAirdropError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, airdroperrors.ErrAirdropNotActive),
		errors.Is(err, airdroperrors.ErrDuplicateEntry),
		errors.Is(err, airdroperrors.ErrEntryAlreadyDecided),
		errors.Is(err, airdroperrors.ErrAlreadyResolved),
		errors.Is(err, airdroperrors.ErrNotFinalizable),
		errors.Is(err, airdroperrors.ErrHasApprovedEntries):
		writeAirdropError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledger.ErrReentrantCall):
		writeAirdropError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeAirdropError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateAirdrop(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	var req airdrophttp.CreateAirdropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.CreateAirdropHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListAirdrops(w http.ResponseWriter, r *http.Request) {
	resp, err := s.airdrop.Handler.ListAirdropsHandler(r.Context())
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAirdrop(w http.ResponseWriter, r *http.Request) {
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	resp, err := s.airdrop.Handler.GetAirdropHandler(r.Context(), airdropID)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	var req airdrophttp.SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.SubmitEntryHandler(r.Context(), caller, airdropID, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	resp, err := s.airdrop.Handler.ListEntriesHandler(r.Context(), airdropID)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyEntry(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	var req airdrophttp.VerifyEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.VerifyEntryHandler(r.Context(), caller, airdropID, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyEntries(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	var req airdrophttp.VerifyEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.VerifyEntriesHandler(r.Context(), caller, airdropID, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeAirdrop(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	resp, err := s.airdrop.Handler.FinalizeAirdropHandler(r.Context(), caller, airdropID)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelAirdrop(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	resp, err := s.airdrop.Handler.CancelAirdropHandler(r.Context(), caller, airdropID)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropStats(w http.ResponseWriter, r *http.Request) {
	airdropID, ok := parsePathID(r, "airdrop_id")
	if !ok {
		writeAirdropError(w, http.StatusBadRequest, "invalid_request", "airdrop_id must be a positive integer")
		return
	}
	resp, err := s.airdrop.Handler.GetStatsHandler(r.Context(), airdropID)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	var req airdrophttp.VerifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.AddVerifierHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeAirdropError)
	if !ok {
		return
	}
	var req airdrophttp.VerifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAirdropError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.airdrop.Handler.RemoveVerifierHandler(r.Context(), caller, req)
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVerifiers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.airdrop.Handler.ListVerifiersHandler(r.Context())
	if err != nil {
		writeAirdropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
