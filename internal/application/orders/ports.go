package orders

import (
	"context"

	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad entre la reserva de
// stock y la escritura de la orden.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Notifier emisión unidireccional de eventos de transición. La orden nunca
// guarda referencia a las notificaciones emitidas; el fan-out persiste el
// aviso e intenta push best-effort sin afectar la transacción que lo originó.
type Notifier interface {
	Notify(ctx context.Context, recipient, kind string, order *entity.Order)
}
