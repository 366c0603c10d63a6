package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	disputeerrors "quinty/contexts/escrow-core/dispute-engine/domain/errors"
	disputehttp "quinty/contexts/escrow-core/dispute-engine/transport/http"
	"quinty/internal/shared/ledger"
)

func writeDisputeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, disputehttp.ErrorResponse{Code: code, Message: message})
}

func writeDisputeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, disputeerrors.ErrInvalidInput):
		writeDisputeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, disputeerrors.ErrDisputeNotFound):
		writeDisputeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, disputeerrors.ErrNotCreator):
		writeDisputeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, disputeerrors.ErrWrongStakeAmount),
		errors.Is(err, disputeerrors.ErrStakeTooLow),
		errors.Is(err, disputeerrors.ErrInvalidRanking):
		writeDisputeError(w, http.StatusUnprocessableEntity, "invalid_value", err.Error())
	case errors.Is(err, disputeerrors.ErrBountyNotEligible),
		errors.Is(err, disputeerrors.ErrContestWindowClosed),
		errors.Is(err, disputeerrors.ErrAlreadyContested),
		errors.Is(err, disputeerrors.ErrVotingClosed),
		errors.Is(err, disputeerrors.ErrVotingStillOpen),
		errors.Is(err, disputeerrors.ErrAlreadyVoted),
		errors.Is(err, disputeerrors.ErrAlreadyResolved),
		errors.Is(err, disputeerrors.ErrNoVotes):
		writeDisputeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledger.ErrReentrantCall):
		writeDisputeError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeDisputeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleInitiatePengadilan(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeDisputeError)
	if !ok {
		return
	}
	var req disputehttp.InitiatePengadilanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDisputeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.dispute.Handler.InitiatePengadilanHandler(r.Context(), caller, req)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeDisputeError)
	if !ok {
		return
	}
	disputeID, ok := parsePathID(r, "dispute_id")
	if !ok {
		writeDisputeError(w, http.StatusBadRequest, "invalid_request", "dispute_id must be a positive integer")
		return
	}
	var req disputehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDisputeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.dispute.Handler.VoteHandler(r.Context(), caller, disputeID, req)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeDisputeError)
	if !ok {
		return
	}
	disputeID, ok := parsePathID(r, "dispute_id")
	if !ok {
		writeDisputeError(w, http.StatusBadRequest, "invalid_request", "dispute_id must be a positive integer")
		return
	}
	resp, err := s.dispute.Handler.ResolveDisputeHandler(r.Context(), caller, disputeID)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDispute(w http.ResponseWriter, r *http.Request) {
	disputeID, ok := parsePathID(r, "dispute_id")
	if !ok {
		writeDisputeError(w, http.StatusBadRequest, "invalid_request", "dispute_id must be a positive integer")
		return
	}
	resp, err := s.dispute.Handler.GetDisputeHandler(r.Context(), disputeID)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDisputes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.dispute.Handler.ListDisputesHandler(r.Context())
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dispute.Handler.TreasuryHandler(r.Context()))
}
