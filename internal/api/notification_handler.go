package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/domain"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/pkg/response"
)

// NotificationHandler serves the notification inbox: list, badge count,
// and read-state updates.
type NotificationHandler struct {
	service *domain.NotificationService
	logger  *zap.Logger
}

func NewNotificationHandler(service *domain.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger,
	}
}

type listResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifs, unread, err := h.service.List(r.Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		response.InternalError(w, "failed to fetch notifications")
		return
	}

	response.OK(w, listResponse{Notifications: notifs, Unread: unread})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	count, err := h.service.CountUnread(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to count unread notifications", zap.Error(err))
		response.InternalError(w, "failed to fetch unread count")
		return
	}

	response.OK(w, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotificationNotFound):
			response.NotFound(w, "notification not found")
		case errors.Is(err, domain.ErrNotOwner):
			response.Forbidden(w, "notification belongs to another user")
		default:
			h.logger.Error("failed to mark notification read", zap.Error(err))
			response.InternalError(w, "failed to update notification")
		}
		return
	}

	response.OK(w, map[string]string{"status": "success"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to mark all notifications read", zap.Error(err))
		response.InternalError(w, "failed to update notifications")
		return
	}

	response.OK(w, map[string]int64{"updated": updated})
}
