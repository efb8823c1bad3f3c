package httpapi

import (
	"errors"
	"net/http"

	"github.com/estate-hub/estate-hub/internal/domain/asset"
)

type assetCreateRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type assetTransitionRequest struct {
	Target string `json:"target" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req assetCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	a, err := s.assetSvc.Create(r.Context(), req.Code, req.Name, actorFromRequest(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	var filter asset.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		st := asset.Status(v)
		if !st.IsValid() {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid status")
			return
		}
		filter.Status = &st
	}
	if v := r.URL.Query().Get("visible"); v != "" {
		visible := v == "true"
		filter.VisibleToInvestors = &visible
	}
	limit, offset := parseLimitOffset(r, 100, 200)
	assets, err := s.assetSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "assetId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid assetId")
		return
	}
	a, err := s.assetSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if a == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "asset not found")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) transitionAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "assetId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid assetId")
		return
	}
	var req assetTransitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	a, err := s.assetSvc.Transition(r.Context(), id, asset.Status(req.Target), req.Reason, actorFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, asset.ErrNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "asset not found")
		case errors.Is(err, asset.ErrInvalidStatus):
			respondError(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, a)
}
