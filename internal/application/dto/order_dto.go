package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemRequest línea del carrito enviada por el cliente. El precio NO se
// acepta del cliente: se resuelve contra el catálogo al crear la orden.
type CartItemRequest struct {
	ProductID string `json:"producto_id"`
	Quantity  int64  `json:"cantidad"`
}

// DeliveryRequest descriptor de entrega del checkout.
type DeliveryRequest struct {
	Type    string  `json:"tipo"` // direccion | enlace | retiro_tienda
	Address string  `json:"direccion,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Link    string  `json:"enlace,omitempty"`
}

// BillingDataRequest identidad fiscal cuando el cliente pide factura.
type BillingDataRequest struct {
	TaxIDType string `json:"tipo_documento"`
	TaxID     string `json:"numero_documento"`
	LegalName string `json:"razon_social"`
	Address   string `json:"direccion"`
	City      string `json:"ciudad"`
	Email     string `json:"email"`
}

// CreateOrderRequest checkout: carrito, entrega, facturación y método de pago.
// El comprobante de transferencia viaja como archivo multipart aparte.
type CreateOrderRequest struct {
	Items           []CartItemRequest   `json:"items"`
	PaymentMethod   string              `json:"metodo_pago"`
	Delivery        DeliveryRequest     `json:"entrega"`
	RequiresInvoice bool                `json:"requiere_factura"`
	Billing         *BillingDataRequest `json:"datos_facturacion,omitempty"`
}

// OrderLineResponse línea congelada de una orden.
type OrderLineResponse struct {
	ProductID string          `json:"producto_id"`
	Name      string          `json:"nombre"`
	Price     decimal.Decimal `json:"precio"`
	Quantity  int64           `json:"cantidad"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TransferConfirmationResponse estado de conciliación de una transferencia.
type TransferConfirmationResponse struct {
	Confirmed   bool       `json:"confirmado"`
	ConfirmedBy string     `json:"confirmado_por,omitempty"`
	Date        *time.Time `json:"fecha,omitempty"`
	Notes       string     `json:"notas,omitempty"`
}

// OrderResponse representación de una orden hacia el cliente o el admin.
type OrderResponse struct {
	ID                    string                        `json:"id"`
	Number                string                        `json:"numero"`
	CustomerID            string                        `json:"cliente_id"`
	Lines                 []OrderLineResponse           `json:"lineas"`
	Subtotal              decimal.Decimal               `json:"subtotal"`
	Tax                   decimal.Decimal               `json:"impuesto"`
	Discount              decimal.Decimal               `json:"descuento"`
	Total                 decimal.Decimal               `json:"total"`
	PaymentMethod         string                        `json:"metodo_pago"`
	HasProof              bool                          `json:"tiene_comprobante"`
	TransferConfirmation  *TransferConfirmationResponse `json:"confirmacion_transferencia,omitempty"`
	DeliveryType          string                        `json:"tipo_entrega"`
	DeliveryAddress       string                        `json:"direccion_entrega,omitempty"`
	RequiresInvoice       bool                          `json:"requiere_factura"`
	Status                string                        `json:"estado"`
	EstimatedDeliveryDate *time.Time                    `json:"fecha_entrega_estimada,omitempty"`
	CreatedAt             time.Time                     `json:"created_at"`
	UpdatedAt             time.Time                     `json:"updated_at"`
}

// OrderListResponse página de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// UpdateOrderStatusRequest transición de estado hecha por el admin.
type UpdateOrderStatusRequest struct {
	Status                string     `json:"estado"`
	EstimatedDeliveryDate *time.Time `json:"fecha_entrega_estimada,omitempty"`
}

// ReconcileRequest notas del admin al confirmar o rechazar una transferencia.
type ReconcileRequest struct {
	Notes string `json:"notas"`
}
