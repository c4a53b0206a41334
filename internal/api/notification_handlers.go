package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/teknoblog/teknoblog/internal/notification"
)

// DefaultNotificationLimit applies when a list request has no limit.
const DefaultNotificationLimit = 50

// NotificationListResponse is the JSON response for GET /notifications.
type NotificationListResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
	Count         int                          `json:"count"`
}

// UnreadCountResponse is the JSON response for GET /notifications/unread.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// MarkAllReadResponse reports how many notifications a read-all touched.
type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}

// NotificationHandlers holds dependencies for notification HTTP handlers.
type NotificationHandlers struct {
	svc *notification.Service
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(svc *notification.Service) *NotificationHandlers {
	return &NotificationHandlers{svc: svc}
}

// List handles GET /notifications?limit= - the authenticated user's
// notifications, newest first.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	limit := DefaultNotificationLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := h.svc.List(r.Context(), userID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list notifications", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Count:         len(notifications),
	})
}

// MarkRead handles POST /notifications/{id}/read. Marking a notification
// that belongs to someone else reads as not found.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	notificationID := r.PathValue("id")
	if notificationID == "" {
		writeErrorCode(w, r, ErrCodeBadRequest, "Notification ID is required")
		return
	}

	if err := h.svc.MarkRead(r.Context(), userID, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			writeErrorCode(w, r, ErrCodeNotFound, "Notification not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to mark notification read", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	marked, err := h.svc.MarkAllRead(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to mark notifications read", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, MarkAllReadResponse{Marked: marked})
}

// UnreadCount handles GET /notifications/unread.
func (h *NotificationHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	unread, err := h.svc.UnreadCount(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count unread notifications", "error", err)
		writeErrorCode(w, r, ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, UnreadCountResponse{Unread: unread})
}
