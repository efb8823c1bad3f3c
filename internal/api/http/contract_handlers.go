package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appContract "github.com/estate-hub/estate-hub/internal/application/contract"
	"github.com/estate-hub/estate-hub/internal/domain/contract"
)

type contractCreateRequest struct {
	Code                 string `json:"code" validate:"required"`
	AssetID              string `json:"asset_id" validate:"required,uuid"`
	InvestorID           string `json:"investor_id" validate:"required,uuid"`
	InvestorEmail        string `json:"investor_email" validate:"required,email"`
	AnnualAmount         string `json:"annual_amount" validate:"required"`
	VATRate              string `json:"vat_rate" validate:"required"`
	DurationYears        int    `json:"duration_years" validate:"required,gt=0"`
	StartDate            string `json:"start_date" validate:"required"`
	InstallmentCount     int    `json:"installment_count" validate:"gte=0"`
	InstallmentFrequency string `json:"installment_frequency,omitempty"`
}

type contractTransitionRequest struct {
	Target               string `json:"target" validate:"required"`
	Reason               string `json:"reason,omitempty"`
	GenerateInstallments bool   `json:"generate_installments,omitempty"`
}

func (s *Server) createContract(w http.ResponseWriter, r *http.Request) {
	var req contractCreateRequest
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
	investorID, err := uuid.Parse(req.InvestorID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid investor_id")
		return
	}
	annual, err := decimal.NewFromString(req.AnnualAmount)
	if err != nil || !annual.IsPositive() {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "annual_amount must be a positive decimal")
		return
	}
	vat, err := decimal.NewFromString(req.VATRate)
	if err != nil || vat.IsNegative() {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "vat_rate must be a non-negative decimal")
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "start_date must be YYYY-MM-DD")
		return
	}
	freq := contract.FrequencyMonthly
	if req.InstallmentFrequency != "" {
		freq = contract.Frequency(req.InstallmentFrequency)
	}

	c, err := s.contractSvc.Create(r.Context(), appContract.CreateParams{
		Code:                 req.Code,
		AssetID:              assetID,
		InvestorID:           investorID,
		InvestorEmail:        req.InvestorEmail,
		AnnualAmount:         annual,
		VATRate:              vat,
		DurationYears:        req.DurationYears,
		StartDate:            startDate,
		InstallmentCount:     req.InstallmentCount,
		InstallmentFrequency: freq,
	}, actorFromRequest(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listContracts(w http.ResponseWriter, r *http.Request) {
	var filter contract.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		st := contract.Status(v)
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
	if v := r.URL.Query().Get("investorId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid investorId")
			return
		}
		filter.InvestorID = &id
	}
	limit, offset := parseLimitOffset(r, 100, 200)
	contracts, err := s.contractSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts})
}

func (s *Server) getContract(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "contractId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid contractId")
		return
	}
	c, err := s.contractSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "contract not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) transitionContract(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "contractId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid contractId")
		return
	}
	var req contractTransitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	c, err := s.contractSvc.Transition(r.Context(), id, contract.Status(req.Target), req.Reason, req.GenerateInstallments, actorFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, contract.ErrNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "contract not found")
		case errors.Is(err, contract.ErrInvalidStatus):
			respondError(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) markContractOverdue(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "contractId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid contractId")
		return
	}
	marked, err := s.contractSvc.MarkInstallmentsOverdue(r.Context(), &id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"contract_id": id, "marked_overdue": marked})
}
