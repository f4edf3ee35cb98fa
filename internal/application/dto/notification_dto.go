package dto

import "time"

// NotificationResponse aviso in-app hacia el usuario.
type NotificationResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orden_id,omitempty"`
	Title     string    `json:"titulo"`
	Message   string    `json:"mensaje"`
	Icon      string    `json:"icono"`
	Read      bool      `json:"leida"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListResponse página de notificaciones con contador de no leídas.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int                    `json:"no_leidas"`
	Page   PageResponse           `json:"page"`
}

// PushSubscribeRequest descriptor de suscripción del navegador (Push API).
type PushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PushUnsubscribeRequest baja de una suscripción por endpoint.
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}
