package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estate-hub/estate-hub/internal/domain/notification"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	var filter notification.Filter
	if v := r.URL.Query().Get("userId"); v != "" {
		filter.TargetUserID = &v
	}
	if v := r.URL.Query().Get("role"); v != "" {
		filter.TargetRole = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := notification.Status(v)
		filter.Status = &st
	}
	limit, offset := parseLimitOffset(r, 100, 200)
	ns, err := s.notifySvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": ns})
}

func (s *Server) getNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "notificationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid notificationId")
		return
	}
	n, err := s.notifySvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if n == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "notification not found")
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) entityAuditHistory(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")
	if entityType == "" || entityID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "entityType and entityId are required")
		return
	}
	limit, _ := parseLimitOffset(r, 50, 200)
	entries, err := s.auditSvc.EntityHistory(r.Context(), entityType, entityID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entity_type": entityType,
		"entity_id":   entityID,
		"entries":     entries,
	})
}

func (s *Server) runSweep(w http.ResponseWriter, r *http.Request) {
	res := s.sweepSvc.Run(r.Context())
	errs := make([]string, 0, len(res.SubtaskErrors))
	for _, err := range res.SubtaskErrors {
		errs = append(errs, err.Error())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contracts_expiring":   res.ContractsExpiring,
		"contracts_expired":    res.ContractsExpired,
		"installments_overdue": res.InstallmentsOverdue,
		"sla_breaches":         res.SLABreaches,
		"subtask_errors":       errs,
	})
}
