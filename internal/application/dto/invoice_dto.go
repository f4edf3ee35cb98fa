package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceResponse factura de una orden completada.
type InvoiceResponse struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orden_id"`
	Number     string          `json:"numero"`
	Date       time.Time       `json:"fecha"`
	NetTotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"impuesto"`
	GrandTotal decimal.Decimal `json:"total"`
}
