package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su contador de stock.
// El CRUD de catálogo vive en el backend administrativo; esta API solo lee
// precio/stock y aplica los descuentos/reposiciones ligados a órdenes.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta vigente
	TaxRate   decimal.Decimal // IVA: 0, 0.05, 0.19
	Stock     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
