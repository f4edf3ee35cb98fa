package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// NotificationRepository puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(n *entity.Notification) error
	ListByRecipient(recipient string, limit, offset int) ([]*entity.Notification, error)
	CountUnread(recipient string) (int, error)
	// MarkRead marca como leída solo si pertenece al destinatario; retorna
	// false si no existe o no es suya.
	MarkRead(id, recipient string) (bool, error)
}
