package entity

import "time"

// RecipientAdmins destinatario reservado: la notificación va a todos los administradores.
const RecipientAdmins = "admin"

// Tipos de evento que el ciclo de vida de órdenes emite hacia el fan-out.
const (
	NotifyNuevaOrden        = "nueva_orden"
	NotifyEstadoActualizado = "estado_actualizado"
	NotifyPagoConfirmado    = "pago_confirmado"
	NotifyPagoRechazado     = "pago_rechazado"
)

// Notification aviso in-app generado por el sistema ante transiciones de
// órdenes/pagos. Solo el "marcar leída" la muta después de creada.
type Notification struct {
	ID        string
	Recipient string // ID de cliente o RecipientAdmins
	OrderID   string // opcional
	Title     string
	Message   string
	Icon      string
	Read      bool
	CreatedAt time.Time
}
