package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appAsset "github.com/estate-hub/estate-hub/internal/application/asset"
	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	appContract "github.com/estate-hub/estate-hub/internal/application/contract"
	appIsnad "github.com/estate-hub/estate-hub/internal/application/isnad"
	appNotify "github.com/estate-hub/estate-hub/internal/application/notify"
	appSweep "github.com/estate-hub/estate-hub/internal/application/sweep"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	assetSvc    *appAsset.Service
	isnadSvc    *appIsnad.Service
	contractSvc *appContract.Service
	auditSvc    *appAudit.Service
	notifySvc   *appNotify.Service
	sweepSvc    *appSweep.Service
	validate    *validator.Validate
}

func NewServer(
	assetSvc *appAsset.Service,
	isnadSvc *appIsnad.Service,
	contractSvc *appContract.Service,
	auditSvc *appAudit.Service,
	notifySvc *appNotify.Service,
	sweepSvc *appSweep.Service,
) *Server {
	return &Server{
		assetSvc:    assetSvc,
		isnadSvc:    isnadSvc,
		contractSvc: contractSvc,
		auditSvc:    auditSvc,
		notifySvc:   notifySvc,
		sweepSvc:    sweepSvc,
		validate:    validator.New(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Post("/", s.createAsset)
			r.Get("/", s.listAssets)
			r.Get("/{assetId}", s.getAsset)
			r.Post("/{assetId}/transition", s.transitionAsset)
		})

		r.Route("/isnad-forms", func(r chi.Router) {
			r.Post("/", s.createIsnadForm)
			r.Get("/", s.listIsnadForms)
			r.Get("/{formId}", s.getIsnadForm)
			r.Post("/{formId}/advance", s.advanceIsnadForm)
			r.Post("/{formId}/advance-stage", s.advanceIsnadStage)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", s.createContract)
			r.Get("/", s.listContracts)
			r.Get("/{contractId}", s.getContract)
			r.Post("/{contractId}/transition", s.transitionContract)
			r.Post("/{contractId}/installments/mark-overdue", s.markContractOverdue)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Get("/{notificationId}", s.getNotification)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Get("/{entityType}/{entityId}", s.entityAuditHistory)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", s.runSweep)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func actorFromRequest(r *http.Request) string {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "system"
	}
	return actor
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
