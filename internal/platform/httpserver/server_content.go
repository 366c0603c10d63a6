package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"quinty/internal/shared/contentref"
)

// maxContentBytes bounds uploaded blobs; references themselves are tiny.
const maxContentBytes = 1 << 20

type contentRefResponse struct {
	Status string `json:"status"`
	Data   struct {
		Ref string `json:"ref"`
	} `json:"data"`
}

type contentResolveResponse struct {
	Status string `json:"status"`
	Data   struct {
		Ref     string `json:"ref"`
		Content string `json:"content"`
	} `json:"data"`
}

func writeContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contentref.ErrEmptyContent):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Code: "empty_content", Message: err.Error()})
	case errors.Is(err, contentref.ErrInvalidRef):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_ref", Message: err.Error()})
	case errors.Is(err, contentref.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "internal server error"})
	}
}

func (s *Server) handleStoreContent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContentBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Code: "content_too_large", Message: "content exceeds size limit"})
		return
	}
	ref, err := s.content.Put(body)
	if err != nil {
		writeContentError(w, err)
		return
	}
	resp := contentRefResponse{Status: "success"}
	resp.Data.Ref = ref
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleResolveContent(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.PathValue("ref"))
	data, err := s.content.Resolve(ref)
	if err != nil {
		writeContentError(w, err)
		return
	}
	resp := contentResolveResponse{Status: "success"}
	resp.Data.Ref = ref
	resp.Data.Content = string(data)
	writeJSON(w, http.StatusOK, resp)
}
