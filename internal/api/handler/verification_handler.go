package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/service"
)

// VerificationHandler serves the email verification endpoints.
// Requesting a code is fire-and-forget: 202 means "queued", not "delivered".
type VerificationHandler struct {
	svc    *service.VerificationService
	logger *zap.Logger
}

func NewVerificationHandler(svc *service.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{svc: svc, logger: logger}
}

type requestCodeBody struct {
	Email string `json:"email"`
}

type checkCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RequestCode handles POST /api/v1/verification/request
func (h *VerificationHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body requestCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.RequestCode(r.Context(), body.Email); err != nil {
		h.logger.Warn("verification request failed", zap.Error(err))
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// CheckCode handles POST /api/v1/verification/check
//
// Expired and unknown codes are a normal negative result with a 200, so the
// client can distinguish "wrong code" from "request a new one".
func (h *VerificationHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	var body checkCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.svc.CheckCode(r.Context(), body.Email, body.Code)
	if err != nil {
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"result": string(result)})
}
