package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/estate-hub/estate-hub/internal/domain/isnad"
)

type isnadCreateRequest struct {
	ReferenceNumber string `json:"reference_number" validate:"required"`
	AssetID         string `json:"asset_id" validate:"required,uuid"`
}

type isnadAdvanceRequest struct {
	Target string `json:"target" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

type isnadAdvanceStageRequest struct {
	Stage      string  `json:"stage" validate:"required"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

func (s *Server) createIsnadForm(w http.ResponseWriter, r *http.Request) {
	var req isnadCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid asset_id")
		return
	}
	f, err := s.isnadSvc.Create(r.Context(), req.ReferenceNumber, assetID, actorFromRequest(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

func (s *Server) listIsnadForms(w http.ResponseWriter, r *http.Request) {
	var filter isnad.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		st := isnad.Status(v)
		if !st.IsValid() {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid status")
			return
		}
		filter.Status = &st
	}
	if v := r.URL.Query().Get("assetId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid assetId")
			return
		}
		filter.AssetID = &id
	}
	if v := r.URL.Query().Get("slaStatus"); v != "" {
		sla := isnad.SLAStatus(v)
		filter.SLAStatus = &sla
	}
	if v := r.URL.Query().Get("stage"); v != "" {
		filter.Stage = &v
	}
	limit, offset := parseLimitOffset(r, 100, 200)
	forms, err := s.isnadSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

func (s *Server) getIsnadForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "formId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid formId")
		return
	}
	f, err := s.isnadSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if f == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "form not found")
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) advanceIsnadForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "formId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid formId")
		return
	}
	var req isnadAdvanceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	f, err := s.isnadSvc.Advance(r.Context(), id, isnad.Status(req.Target), req.Reason, actorFromRequest(r))
	if err != nil {
		respondIsnadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) advanceIsnadStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "formId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid formId")
		return
	}
	var req isnadAdvanceStageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	f, err := s.isnadSvc.AdvanceStage(r.Context(), id, req.Stage, req.AssigneeID, actorFromRequest(r))
	if err != nil {
		respondIsnadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func respondIsnadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, isnad.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "form not found")
	case errors.Is(err, isnad.ErrTerminal):
		respondError(w, http.StatusConflict, "TERMINAL_STATE", err.Error())
	case errors.Is(err, isnad.ErrInvalidStatus):
		respondError(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
