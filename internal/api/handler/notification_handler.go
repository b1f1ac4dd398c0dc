package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/nemuzard/notesys/internal/api/middleware"
	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/service"
)

// NotificationHandler serves the message-center endpoints and the
// domain-event trigger the CRUD layer calls when a comment, like, or
// system message happens.
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// CreateEvent handles POST /api/v1/events
//
// The authenticated caller is the actor; the body names recipient, kind,
// and target. Returns 201 with the stored notification.
func (h *NotificationHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	actorID := apimw.GetUserID(r.Context())
	n, err := h.svc.Create(r.Context(), actorID, req)
	if err != nil {
		h.logger.Warn("create notification failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, n)
}

// List handles GET /api/v1/notifications?filter=all|unread&limit=N
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipientID := apimw.GetUserID(r.Context())
	filter := parseListFilter(r)

	notifications, err := h.svc.List(r.Context(), recipientID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": notifications})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipientID := apimw.GetUserID(r.Context())

	if err := h.svc.MarkRead(r.Context(), id, recipientID); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID := apimw.GetUserID(r.Context())
	if err := h.svc.MarkAllRead(r.Context(), recipientID); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID := apimw.GetUserID(r.Context())
	count, err := h.svc.UnreadCount(r.Context(), recipientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count unread")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{}

	if q.Get("filter") == "unread" {
		filter.UnreadOnly = true
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 200 {
		filter.Limit = l
	}
	return filter
}
