package http

import (
	"encoding/json"
	"net/http"

	"loandesk/domain"
	"loandesk/service"
)

type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// List handles GET /notifications?role=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	list, err := h.service.List(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationListResponse{Notifications: list})
}

type createNotificationRequest struct {
	CID           string                  `json:"cid"`
	Type          domain.NotificationType `json:"type"`
	RecipientRole domain.Role             `json:"recipientRole"`
	Message       string                  `json:"message"`
}

// Create handles POST /notifications. Duplicate unread notifications come
// back as 409.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), domain.Notification{
		CID:           req.CID,
		Type:          req.Type,
		RecipientRole: req.RecipientRole,
		Message:       req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type markReadRequest struct {
	NotificationIDs []string    `json:"notificationIds"`
	Role            domain.Role `json:"role"`
}

type markReadResponse struct {
	Updated int `json:"updated"`
}

// MarkRead handles POST /notifications/mark-read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.MarkRead(r.Context(), req.NotificationIDs, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markReadResponse{Updated: updated})
}
