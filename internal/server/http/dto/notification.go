package dto

import "time"

// NotificationResponse describes one inbox entry.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	OrderID   *int64    `json:"orderId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// CountResponse carries a single counter.
type CountResponse struct {
	Count int `json:"count"`
}
