package entity

import "time"

// PushSubscription suscripción web push de un usuario (claves del navegador).
// Role permite expandir el destinatario reservado "admin" a todas las
// suscripciones de administradores.
type PushSubscription struct {
	ID        string
	UserID    string
	Role      string // "cliente" | "admin"
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
