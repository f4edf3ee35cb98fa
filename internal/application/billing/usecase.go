package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// InvoicePDFGenerator puerto de render de la representación gráfica.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, order *entity.Order, customer *entity.Customer) ([]byte, error)
}

// UseCase facturación de órdenes. La única regla propia del núcleo es la
// elegibilidad: solo una orden completada puede facturarse; re-solicitar la
// factura de una orden ya facturada devuelve la existente sin duplicar.
type UseCase struct {
	invoiceRepo  repository.InvoiceRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
) *UseCase {
	return &UseCase{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		generator:    generator,
	}
}

// Eligible predicado de elegibilidad: la orden admite factura si y solo si
// está en estado completado.
func Eligible(order *entity.Order) bool {
	return order != nil && order.Status == entity.OrderStatusCompletado
}

// CreateInvoice genera la factura de una orden completada. Idempotente: si la
// orden ya tiene factura se devuelve esa, sin error ni duplicado. El cliente
// solo puede facturar sus propias órdenes.
func (uc *UseCase) CreateInvoice(ctx context.Context, actorID, actorRole, orderID string) (*dto.InvoiceResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if actorRole != "admin" && order.CustomerID != actorID {
		return nil, domain.ErrForbidden
	}

	if existing, err := uc.invoiceRepo.GetByOrderID(orderID); err != nil {
		return nil, err
	} else if existing != nil {
		return toInvoiceResponse(existing), nil
	}

	if !Eligible(order) {
		return nil, domain.ErrOrderNotCompleted
	}

	n, err := uc.invoiceRepo.NextNumber()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		Number:     fmt.Sprintf("FAC-%06d", n),
		Date:       now,
		NetTotal:   order.Subtotal,
		TaxTotal:   order.Tax,
		GrandTotal: order.Total,
		CreatedAt:  now,
	}
	if err := uc.invoiceRepo.Create(invoice); err != nil {
		// Carrera con otra petición idéntica: la restricción única por orden
		// la resolvió; devolver la ganadora.
		if errors.Is(err, domain.ErrDuplicate) {
			if existing, gErr := uc.invoiceRepo.GetByOrderID(orderID); gErr == nil && existing != nil {
				return toInvoiceResponse(existing), nil
			}
		}
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// DownloadPDF genera el PDF de la factura. El cliente solo puede descargar
// facturas de sus propias órdenes.
func (uc *UseCase) DownloadPDF(ctx context.Context, actorID, actorRole, invoiceID string) (pdf []byte, filename string, err error) {
	invoice, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", err
	}
	if invoice == nil {
		return nil, "", domain.ErrNotFound
	}

	order, err := uc.orderRepo.GetByID(invoice.OrderID)
	if err != nil || order == nil {
		return nil, "", fmt.Errorf("pdf: obtener orden de la factura: %w", err)
	}
	if actorRole != "admin" && order.CustomerID != actorID {
		return nil, "", domain.ErrForbidden
	}

	customer, err := uc.customerRepo.GetByID(order.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if customer == nil {
		customer = &entity.Customer{ID: order.CustomerID, Name: "Cliente " + order.CustomerID}
	}

	pdf, err = uc.generator.GenerateInvoicePDF(ctx, invoice, order, customer)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("factura_%s.pdf", invoice.Number), nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:         inv.ID,
		OrderID:    inv.OrderID,
		Number:     inv.Number,
		Date:       inv.Date,
		NetTotal:   inv.NetTotal,
		TaxTotal:   inv.TaxTotal,
		GrandTotal: inv.GrandTotal,
	}
}
