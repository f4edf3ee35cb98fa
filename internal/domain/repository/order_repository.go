package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para Order y sus líneas (DIP).
// Las órdenes nunca se borran físicamente: cancelar es un estado terminal.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetByIDForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para
	// serializar transiciones concurrentes sobre la misma orden.
	GetByIDForUpdate(id string) (*entity.Order, error)
	// NextNumber reserva el siguiente consecutivo legible de orden.
	NextNumber() (int64, error)
	// UpdateStatus persiste estado, fecha estimada de entrega y updated_at.
	UpdateStatus(order *entity.Order) error
	// UpdateTransferConfirmation persiste la decisión de conciliación.
	UpdateTransferConfirmation(order *entity.Order) error
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error)
	List(status string, limit, offset int) ([]*entity.Order, error)
}
