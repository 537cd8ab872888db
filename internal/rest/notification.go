package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal"
)

//NotificationService defines the operations the Notification handler
//exposes over HTTP.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]internal.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

//NotificationHandler exposes Notification operations
type NotificationHandler struct {
	svc NotificationService
}

//NewNotificationHandler instantiates the handler
func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

//Register connects the handlers to the router
func (n *NotificationHandler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", n.list)
		r.Post("/{id}/read", n.markRead)
	})
}

//Notification is a due-soon alert addressed to the requester
type Notification struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

//ListNotificationsResponse defines the response returned back after
//listing notifications.
type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

func (n *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	notifications, err := n.svc.List(r.Context(), requesterID(r))
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	res := ListNotificationsResponse{Notifications: make([]Notification, len(notifications))}
	for i, notification := range notifications {
		res.Notifications[i] = Notification{
			ID:        notification.ID.String(),
			TaskID:    notification.TaskID.String(),
			Message:   notification.Message,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		}
	}

	renderResponse(w, &res, http.StatusOK)
}

func (n *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if err := n.svc.MarkRead(r.Context(), requesterID(r), id); err != nil {
		renderErrorResponse(r.Context(), w, "mark read failed", err)
		return
	}

	renderResponse(w, struct{}{}, http.StatusOK)
}
