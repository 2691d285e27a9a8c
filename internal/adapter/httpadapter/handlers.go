package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type createdResponse struct {
	ID   string         `json:"id"`
	Item domain.MapItem `json:"item"`
}

// elevationResponse reports null when no elevation is known for the point.
type elevationResponse struct {
	Elevation *int `json:"elevation"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := s.api.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := s.api.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	item, err := s.api.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, createdResponse{ID: item.ID, Item: item})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req service.ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.api.Classify(req))
}

func (s *Server) handleLevels(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.api.Levels())
}

// handleElevation answers null rather than an error for anything it cannot
// resolve, so the form can always fall back to manual entry.
func (s *Server) handleElevation(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon query parameters are required"})
		return
	}

	var resp elevationResponse
	if meters, ok := s.api.Elevation(r.Context(), lat, lon); ok {
		resp.Elevation = &meters
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMissingCoordinates), errors.Is(err, domain.ErrInvalidCoordinates):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
