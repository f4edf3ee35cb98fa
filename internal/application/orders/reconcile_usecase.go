package orders

import (
	"context"
	"time"

	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// ReconcileUseCase conciliación administrativa de transferencias: confirmar o
// rechazar el pago a la vista del comprobante subido. A diferencia de las
// transiciones genéricas, re-invocar tras una decisión es un error (no un
// no-op): confirmar/rechazar mueve stock y estado visibles al cliente y no
// debe reproducirse.
type ReconcileUseCase struct {
	txRunner TxRunner
	notifier Notifier
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner, notifier Notifier) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner, notifier: notifier}
}

// guard valida las precondiciones comunes de confirm/reject sobre la orden
// ya bloqueada: existe, es transferencia, no terminal, sin decidir.
func (uc *ReconcileUseCase) guard(order *entity.Order) error {
	if order == nil {
		return domain.ErrOrderNotFound
	}
	if !order.IsTransfer() {
		return domain.ErrNotATransferOrder
	}
	if order.IsTerminal() {
		return domain.ErrTerminalStatus
	}
	if order.TransferConfirmation != nil && order.TransferConfirmation.Reconciled() {
		return domain.ErrAlreadyReconciled
	}
	return nil
}

// Confirm marca la transferencia como confirmada por el actor. No cambia el
// estado de la orden: solo la desbloquea para avanzar por el ciclo normal.
func (uc *ReconcileUseCase) Confirm(ctx context.Context, actorRole, actorID, orderID, notes string) (*entity.Order, error) {
	if actorRole != "admin" {
		return nil, domain.ErrForbidden
	}

	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if err := uc.guard(order); err != nil {
			return err
		}
		now := time.Now()
		order.TransferConfirmation = &entity.TransferConfirmation{
			Confirmed:   true,
			ConfirmedBy: actorID,
			DecidedAt:   &now,
			Notes:       notes,
		}
		order.UpdatedAt = now
		return orderRepo.UpdateTransferConfirmation(order)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, order.CustomerID, entity.NotifyPagoConfirmado, order)
	return order, nil
}

// Reject registra el rechazo (confirmado queda en false, las notas guardan el
// motivo) y cancela la orden directamente, devolviendo el stock reservado
// igual que la cancelación del ciclo genérico.
func (uc *ReconcileUseCase) Reject(ctx context.Context, actorRole, actorID, orderID, notes string) (*entity.Order, error) {
	if actorRole != "admin" {
		return nil, domain.ErrForbidden
	}

	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if err := uc.guard(order); err != nil {
			return err
		}
		now := time.Now()
		order.TransferConfirmation = &entity.TransferConfirmation{
			Confirmed:   false,
			ConfirmedBy: actorID,
			DecidedAt:   &now,
			Notes:       notes,
		}
		if err := orderRepo.UpdateTransferConfirmation(order); err != nil {
			return err
		}

		if order.NeedsStockRestore() {
			for _, line := range order.Lines {
				if err := productRepo.RestoreStock(line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
		}
		order.Status = entity.OrderStatusCancelado
		order.UpdatedAt = now
		return orderRepo.UpdateStatus(order)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, order.CustomerID, entity.NotifyPagoRechazado, order)
	return order, nil
}
