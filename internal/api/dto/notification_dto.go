package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationResponse is one alert as shown to its recipient.
type NotificationResponse struct {
	ID        string                    `json:"id"`
	TicketID  string                    `json:"ticket_id"`
	Title     string                    `json:"title"`
	Message   string                    `json:"message"`
	Reason    domain.NotificationReason `json:"reason"`
	IsRead    bool                      `json:"is_read"`
	CreatedAt time.Time                 `json:"created_at"`
}

// NotificationListResponse pairs the page with the recipient's unread count.
type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

// NotificationResponseFrom maps a domain notification.
func NotificationResponseFrom(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		TicketID:  n.TicketID,
		Title:     n.Title,
		Message:   n.Message,
		Reason:    n.Reason,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
