package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/domain"
	"github.com/learnhub/backend/pkg/response"
	"github.com/learnhub/backend/pkg/validator"
)

// AnnounceHandler exposes the producer endpoints: admin broadcasts,
// instructor announcements to a course or group, and direct single-user
// notifications. Each one builds a NotificationEvent and hands it to the
// delivery service.
type AnnounceHandler struct {
	service *domain.NotificationService
	logger  *zap.Logger
}

func NewAnnounceHandler(service *domain.NotificationService, logger *zap.Logger) *AnnounceHandler {
	return &AnnounceHandler{
		service: service,
		logger:  logger,
	}
}

type announceRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

func (h *AnnounceHandler) decode(w http.ResponseWriter, r *http.Request) (*announceRequest, bool) {
	var req announceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return nil, false
	}
	if errs := validator.ValidateNotificationContent(req.Title, req.Message, req.Link); errs.HasErrors() {
		response.BadRequest(w, errs.Error())
		return nil, false
	}
	return &req, true
}

func (req *announceRequest) event() *domain.NotificationEvent {
	ev := &domain.NotificationEvent{
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	}
	if req.Link != "" {
		link := req.Link
		ev.Link = &link
	}
	return ev
}

func (h *AnnounceHandler) deliver(w http.ResponseWriter, r *http.Request, ev *domain.NotificationEvent) {
	count, err := h.service.Deliver(r.Context(), ev)
	if err != nil {
		if errors.Is(err, domain.ErrNoTarget) || errors.Is(err, domain.ErrEmptyContent) {
			response.BadRequest(w, err.Error())
			return
		}
		h.logger.Error("delivery failed", zap.Error(err))
		response.InternalError(w, "failed to deliver notification")
		return
	}
	response.OK(w, map[string]int{"recipients": count})
}

// Broadcast delivers to every user: one durable row each plus a live push
// to all open connections.
func (h *AnnounceHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ev := req.event()
	ev.Broadcast = true
	if ev.Type == "" {
		ev.Type = domain.TypeAnnouncement
	}
	h.deliver(w, r, ev)
}

// AnnounceCourse delivers to every approved enrollee of a course.
func (h *AnnounceHandler) AnnounceCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		response.BadRequest(w, "invalid course id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ev := req.event()
	ev.CourseID = &courseID
	if ev.Type == "" {
		ev.Type = domain.TypeAnnouncement
	}
	h.deliver(w, r, ev)
}

// AnnounceGroup delivers to every member of a group.
func (h *AnnounceHandler) AnnounceGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "invalid group id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ev := req.event()
	ev.GroupID = &groupID
	if ev.Type == "" {
		ev.Type = domain.TypeAnnouncement
	}
	h.deliver(w, r, ev)
}

// NotifyUser delivers to a single user.
func (h *AnnounceHandler) NotifyUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ev := req.event()
	ev.UserIDs = []uuid.UUID{userID}
	h.deliver(w, r, ev)
}
