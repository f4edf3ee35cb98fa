package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// InvoiceRepository puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	// GetByOrderID devuelve la factura de la orden o nil si aún no existe.
	GetByOrderID(orderID string) (*entity.Invoice, error)
	// NextNumber reserva el siguiente consecutivo de facturación.
	NextNumber() (int64, error)
}
