package orders

import (
	"context"
	"time"

	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// UpdateStatusUseCase aplica transiciones genéricas del estado de una orden
// (pendiente -> procesando -> completado, o -> cancelado) con bloqueo de fila
// para serializar escritores concurrentes sobre la misma orden.
type UpdateStatusUseCase struct {
	txRunner TxRunner
	notifier Notifier
}

// NewUpdateStatusUseCase construye el caso de uso.
func NewUpdateStatusUseCase(txRunner TxRunner, notifier Notifier) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{txRunner: txRunner, notifier: notifier}
}

// UpdateStatus transiciona la orden hacia target. Reglas:
//   - target debe ser uno de los cuatro estados conocidos;
//   - un estado terminal rechaza cualquier destino distinto (se reporta, no
//     se ignora en silencio);
//   - procesando/completado exigen transferencia confirmada;
//   - cancelar desde pendiente/procesando devuelve el stock reservado;
//   - re-aplicar el estado actual es un no-op exitoso que NO re-emite
//     notificación (tolera clics repetidos del admin).
//
// Solo un admin puede transicionar; el rol se re-verifica aquí aunque el
// middleware ya lo haya hecho.
func (uc *UpdateStatusUseCase) UpdateStatus(ctx context.Context, actorRole, orderID, target string, eta *time.Time) (*entity.Order, error) {
	if actorRole != "admin" {
		return nil, domain.ErrForbidden
	}
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var order *entity.Order
	changed := false

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		// FOR UPDATE: el segundo escritor concurrente observa el estado ya
		// comprometido y cae en las reglas de rechazo de arriba.
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if err := order.CanTransition(target); err != nil {
			return err
		}
		if target == order.Status {
			return nil // reintento idempotente: sin efectos
		}

		if target == entity.OrderStatusCancelado && order.NeedsStockRestore() {
			for _, line := range order.Lines {
				if err := productRepo.RestoreStock(line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
		}

		order.Status = target
		if eta != nil && (target == entity.OrderStatusProcesando || target == entity.OrderStatusCompletado) {
			order.EstimatedDeliveryDate = eta
		}
		order.UpdatedAt = time.Now()
		changed = true
		return orderRepo.UpdateStatus(order)
	})
	if err != nil {
		return nil, err
	}

	// Exactamente una notificación por transición aceptada; ninguna en el no-op.
	if changed {
		uc.notifier.Notify(ctx, order.CustomerID, entity.NotifyEstadoActualizado, order)
	}
	return order, nil
}
