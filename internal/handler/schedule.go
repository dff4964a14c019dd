package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// GetSchedule handles GET /trips/{tripID}/schedule.
// A trip that was never saved returns an empty document at version 0.
func (s *Server) GetSchedule(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parameterBody(err))
		return
	}

	snap, err := s.schedules.Load(r.Context(), tripID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutSchedule handles PUT /trips/{tripID}/schedule.
// The body is the full document; the writer identifies itself with the
// X-Client-ID header.
func (s *Server) PutSchedule(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parameterBody(err))
		return
	}
	clientID := r.Header.Get(ClientIDHeader)
	if clientID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(ClientIDHeader+" header is required"))
		return
	}

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, tooLargeBody())
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body must be a schedule document: "+err.Error()))
		return
	}

	version, err := s.schedules.Save(r.Context(), tripID, clientID, doc)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveScheduleResponse{Version: version})
}

// DeleteSchedule handles DELETE /trips/{tripID}/schedule.
func (s *Server) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	tripID, err := tripIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parameterBody(err))
		return
	}

	if err := s.schedules.Delete(r.Context(), tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("schedule not found"))
			return
		}
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, internalBody())
}
