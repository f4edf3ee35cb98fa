package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// CreateOrderUseCase convierte el carrito en una orden: valida entrega,
// facturación y comprobante, re-resuelve precios contra el catálogo y reserva
// stock en la misma transacción que persiste la orden.
type CreateOrderUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	notifier    Notifier
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(txRunner TxRunner, productRepo repository.ProductRepository, notifier Notifier) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		notifier:    notifier,
	}
}

// CreateOrderInput entrada del checkout. Proof viene ya almacenado por el
// Proof-of-Payment Store (el handler sube el archivo antes de llamar aquí).
type CreateOrderInput struct {
	CustomerID      string
	Items           []dto.CartItemRequest
	PaymentMethod   string
	Delivery        dto.DeliveryRequest
	RequiresInvoice bool
	Billing         *dto.BillingDataRequest
	Proof           *entity.ProofOfPayment
}

// Create valida en secuencia (carrito, catálogo, entrega, facturación,
// comprobante), congela precios del catálogo y crea la orden en pendiente.
// La reserva de stock y la escritura de la orden son atómicas: si un
// decremento falla por carrera, toda la creación se revierte.
//
// El precio enviado por el cliente nunca se usa: se re-resuelve aquí contra
// el catálogo vigente y se congela en la línea.
func (uc *CreateOrderUseCase) Create(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	// 1. Carrito no vacío
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// 2. Re-resolver precio y stock de cada producto (lectura advisory; el
	// decremento condicional dentro de la tx es el chequeo autoritativo).
	lines := make([]entity.OrderLine, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("consultar producto %s: %w", item.ProductID, err)
		}
		if product == nil {
			return nil, &domain.UnknownProductError{ProductID: item.ProductID}
		}
		if product.Stock < item.Quantity {
			return nil, &domain.OutOfStockError{ProductID: item.ProductID}
		}
		lines = append(lines, entity.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			TaxRate:   product.TaxRate,
			Quantity:  item.Quantity,
		})
	}

	// 3. Entrega autoconsistente (retiro XOR dirección/enlace)
	loc := entity.DeliveryLocation{
		Type:    in.Delivery.Type,
		Address: in.Delivery.Address,
		Lat:     in.Delivery.Lat,
		Lng:     in.Delivery.Lng,
		Link:    in.Delivery.Link,
	}

	now := time.Now()
	order, err := entity.NewOrder(in.CustomerID, lines, in.PaymentMethod, loc, now)
	if err != nil {
		return nil, err
	}

	// 4. Facturación: los seis campos fiscales si el cliente pidió factura
	if in.RequiresInvoice {
		if in.Billing == nil {
			return nil, domain.ErrIncompleteBillingData
		}
		billing := entity.BillingData{
			TaxIDType: in.Billing.TaxIDType,
			TaxID:     in.Billing.TaxID,
			LegalName: in.Billing.LegalName,
			Address:   in.Billing.Address,
			City:      in.Billing.City,
			Email:     in.Billing.Email,
		}
		if !billing.Complete() {
			return nil, domain.ErrIncompleteBillingData
		}
		order.RequiresInvoice = true
		order.Billing = &billing
	}

	// 5. Transferencia exige comprobante ya validado y almacenado
	if order.IsTransfer() {
		if in.Proof == nil || in.Proof.BlobRef == "" {
			return nil, domain.ErrMissingProofOfPayment
		}
		order.Proof = in.Proof
	}

	// Reserva de stock + persistencia de la orden en una sola transacción.
	// El decremento es un compare-and-decrement por fila; si una línea queda
	// sin stock por una compra concurrente, el rollback deshace las demás.
	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error {
		n, err := orderRepo.NextNumber()
		if err != nil {
			return err
		}
		order.Number = fmt.Sprintf("ORD-%06d", n)
		for _, line := range order.Lines {
			if err := productRepo.DecrementStock(line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}

	// Aviso a administradores fuera de la tx: una creación abortada jamás
	// deja notificaciones sueltas.
	uc.notifier.Notify(ctx, entity.RecipientAdmins, entity.NotifyNuevaOrden, order)

	return order, nil
}
