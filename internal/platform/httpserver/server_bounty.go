package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	bountyerrors "quinty/contexts/escrow-core/bounty-engine/domain/errors"
	bountyhttp "quinty/contexts/escrow-core/bounty-engine/transport/http"
	ledgererrors "quinty/internal/shared/ledger"
)

func writeBountyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, bountyhttp.ErrorResponse{Code: code, Message: message})
}

func writeBountyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bountyerrors.ErrInvalidInput),
		errors.Is(err, bountyerrors.ErrZeroEscrow),
		errors.Is(err, bountyerrors.ErrDeadlineNotFuture):
		writeBountyError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, bountyerrors.ErrSlashPercentOutOfBand),
		errors.Is(err, bountyerrors.ErrSharesDoNotSum),
		errors.Is(err, bountyerrors.ErrAmountTooLarge),
		errors.Is(err, bountyerrors.ErrWrongDeposit):
		writeBountyError(w, http.StatusUnprocessableEntity, "invalid_value", err.Error())
	case errors.Is(err, bountyerrors.ErrBountyNotFound),
		errors.Is(err, bountyerrors.ErrSubmissionNotFound):
		writeBountyError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, bountyerrors.ErrNotCreator),
		errors.Is(err, bountyerrors.ErrNotParticipant),
		errors.Is(err, bountyerrors.ErrNotSolver):
		writeBountyError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, bountyerrors.ErrBountyNotOpen),
		errors.Is(err, bountyerrors.ErrBountyResolved),
		errors.Is(err, bountyerrors.ErrDeadlinePassed),
		errors.Is(err, bountyerrors.ErrDeadlineNotPassed),
		errors.Is(err, bountyerrors.ErrAlreadyRevealed),
		errors.Is(err, bountyerrors.ErrNotResolved),
		errors.Is(err, bountyerrors.ErrWinnerMismatch):
		writeBountyError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, bountyerrors.ErrDisputesUnavailable):
		writeBountyError(w, http.StatusFailedDependency, "disputes_unavailable", err.Error())
	case errors.Is(err, ledgererrors.ErrReentrantCall):
		writeBountyError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeBountyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireCaller(w http.ResponseWriter, r *http.Request, write func(http.ResponseWriter, int, string, string)) (string, bool) {
	caller := resolveCaller(r)
	if caller == "" {
		write(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleCreateBounty(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	var req bountyhttp.CreateBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBountyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.bounty.Handler.CreateBountyHandler(r.Context(), caller, req)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListBounties(w http.ResponseWriter, r *http.Request) {
	resp, err := s.bounty.Handler.ListBountiesHandler(r.Context())
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBounty(w http.ResponseWriter, r *http.Request) {
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	resp, err := s.bounty.Handler.GetBountyHandler(r.Context(), bountyID)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitSolution(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	var req bountyhttp.SubmitSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBountyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.bounty.Handler.SubmitSolutionHandler(r.Context(), caller, bountyID, req)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	resp, err := s.bounty.Handler.ListSubmissionsHandler(r.Context(), bountyID)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddReply(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	var req bountyhttp.AddReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBountyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.bounty.Handler.AddReplyHandler(r.Context(), caller, bountyID, req)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectWinners(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	var req bountyhttp.SelectWinnersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBountyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.bounty.Handler.SelectWinnersHandler(r.Context(), caller, bountyID, req)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevealSolution(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	var req bountyhttp.RevealSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBountyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.bounty.Handler.RevealSolutionHandler(r.Context(), caller, bountyID, req)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTriggerSlash(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeBountyError)
	if !ok {
		return
	}
	bountyID, ok := parsePathID(r, "bounty_id")
	if !ok {
		writeBountyError(w, http.StatusBadRequest, "invalid_request", "bounty_id must be a positive integer")
		return
	}
	resp, err := s.bounty.Handler.TriggerSlashHandler(r.Context(), caller, bountyID)
	if err != nil {
		writeBountyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
