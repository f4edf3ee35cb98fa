package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura generada para una orden completada. Una orden tiene a lo
// sumo una factura; re-solicitar la creación devuelve la existente.
type Invoice struct {
	ID         string
	OrderID    string
	Number     string // consecutivo legible (FAC-000042)
	Date       time.Time
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	CreatedAt  time.Time
}
