package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avelez/pedidos-api/internal/domain"
)

// Estados del ciclo de vida de una orden.
// pendiente -> procesando -> completado; cualquier estado no terminal -> cancelado.
const (
	OrderStatusPendiente  = "pendiente"
	OrderStatusProcesando = "procesando"
	OrderStatusCompletado = "completado"
	OrderStatusCancelado  = "cancelado"
)

// Métodos de pago soportados (conjunto cerrado; validado en NewOrder).
const (
	PaymentEfectivo      = "efectivo"
	PaymentTransferencia = "transferencia"
)

// Tipos de ubicación de entrega.
const (
	DeliveryDireccion = "direccion"     // dirección geocodificada
	DeliveryEnlace    = "enlace"        // pin compartido por enlace
	DeliveryRetiro    = "retiro_tienda" // retirar en tienda
)

// statusRank ordena los estados no terminales para impedir retrocesos.
var statusRank = map[string]int{
	OrderStatusPendiente:  0,
	OrderStatusProcesando: 1,
	OrderStatusCompletado: 2,
}

// ValidStatus indica si s es uno de los cuatro estados conocidos.
func ValidStatus(s string) bool {
	switch s {
	case OrderStatusPendiente, OrderStatusProcesando, OrderStatusCompletado, OrderStatusCancelado:
		return true
	}
	return false
}

// OrderLine línea de orden con nombre y precio congelados al momento de la compra.
// Ediciones posteriores del producto no alteran órdenes históricas.
type OrderLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	TaxRate   decimal.Decimal
	Quantity  int64
}

// Subtotal de la línea (precio congelado por cantidad).
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// ProofOfPayment referencia opaca al comprobante de transferencia almacenado.
type ProofOfPayment struct {
	BlobRef  string
	FileName string
	MimeType string
}

// TransferConfirmation decisión administrativa sobre una transferencia.
// DecidedAt distingue "aún sin revisar" de "rechazada" (Confirmed queda en false en ambas).
type TransferConfirmation struct {
	Confirmed   bool
	ConfirmedBy string
	DecidedAt   *time.Time
	Notes       string
}

// Reconciled indica si la transferencia ya fue confirmada o rechazada.
func (c TransferConfirmation) Reconciled() bool {
	return c.DecidedAt != nil
}

// DeliveryLocation descriptor de entrega: dirección con coordenadas, pin por
// enlace, o retiro en tienda (mutuamente excluyentes).
type DeliveryLocation struct {
	Type    string
	Address string
	Lat     float64
	Lng     float64
	Link    string
}

// Validate verifica que el descriptor sea autoconsistente.
func (d DeliveryLocation) Validate() error {
	switch d.Type {
	case DeliveryRetiro:
		return nil
	case DeliveryDireccion:
		if d.Address == "" || (d.Lat == 0 && d.Lng == 0) {
			return domain.ErrInvalidDelivery
		}
		return nil
	case DeliveryEnlace:
		if d.Link == "" {
			return domain.ErrInvalidDelivery
		}
		return nil
	}
	return domain.ErrInvalidDelivery
}

// BillingData identidad fiscal congelada al momento de la orden.
type BillingData struct {
	TaxIDType string // NIT, CC, CE...
	TaxID     string
	LegalName string
	Address   string
	City      string
	Email     string
}

// Complete verifica que los seis campos fiscales estén presentes.
func (b BillingData) Complete() bool {
	return b.TaxIDType != "" && b.TaxID != "" && b.LegalName != "" &&
		b.Address != "" && b.City != "" && b.Email != ""
}

// Order agregado central: líneas congeladas, totales inmutables, método de
// pago, comprobante, conciliación de transferencia y estado. Las reglas de
// transición las posee la propia entidad.
type Order struct {
	ID                    string
	Number                string // consecutivo legible (ORD-000123), inmutable
	CustomerID            string
	Lines                 []OrderLine
	Subtotal              decimal.Decimal
	Tax                   decimal.Decimal
	Discount              decimal.Decimal
	Total                 decimal.Decimal
	PaymentMethod         string
	Proof                 *ProofOfPayment       // solo transferencia
	TransferConfirmation  *TransferConfirmation // solo transferencia
	Location              DeliveryLocation
	RequiresInvoice       bool
	Billing               *BillingData // solo si RequiresInvoice
	Status                string
	EstimatedDeliveryDate *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewOrder construye la orden en estado pendiente con totales calculados
// desde las líneas ya congeladas. Solo acepta métodos de pago del conjunto
// cerrado; para transferencia adjunta la carga de conciliación sin decidir.
func NewOrder(customerID string, lines []OrderLine, paymentMethod string, loc DeliveryLocation, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if paymentMethod != PaymentEfectivo && paymentMethod != PaymentTransferencia {
		return nil, domain.ErrInvalidInput
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
		tax = tax.Add(l.Subtotal().Mul(l.TaxRate))
	}
	tax = tax.Round(2)
	discount := decimal.Zero

	o := &Order{
		CustomerID:    customerID,
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      discount,
		Total:         subtotal.Sub(discount).Add(tax),
		PaymentMethod: paymentMethod,
		Location:      loc,
		Status:        OrderStatusPendiente,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if paymentMethod == PaymentTransferencia {
		o.TransferConfirmation = &TransferConfirmation{}
	}
	return o, nil
}

// IsTerminal indica si la orden ya no admite transiciones.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompletado || o.Status == OrderStatusCancelado
}

// IsTransfer indica si la orden se paga por transferencia bancaria.
func (o *Order) IsTransfer() bool {
	return o.PaymentMethod == PaymentTransferencia
}

// PaymentConfirmed indica si la orden puede avanzar más allá de pendiente.
// Para efectivo siempre es cierto; para transferencia exige confirmación.
func (o *Order) PaymentConfirmed() bool {
	if !o.IsTransfer() {
		return true
	}
	return o.TransferConfirmation != nil && o.TransferConfirmation.Confirmed
}

// CanTransition valida la transición hacia target sin aplicarla.
// Retorna nil también cuando target == estado actual (reintento idempotente);
// el caller decide no re-emitir efectos en ese caso.
func (o *Order) CanTransition(target string) error {
	if !ValidStatus(target) {
		return domain.ErrInvalidStatus
	}
	if target == o.Status {
		return nil
	}
	if o.IsTerminal() {
		return domain.ErrTerminalStatus
	}
	if target == OrderStatusCancelado {
		return nil
	}
	// Solo avances: pendiente -> procesando -> completado (sin retrocesos).
	if statusRank[target] <= statusRank[o.Status] {
		return domain.ErrInvalidStatus
	}
	if !o.PaymentConfirmed() {
		return domain.ErrPaymentNotConfirmed
	}
	return nil
}

// NeedsStockRestore indica si cancelar desde el estado actual debe devolver
// el stock reservado (solo desde pendiente o procesando; nunca doble).
func (o *Order) NeedsStockRestore() bool {
	return o.Status == OrderStatusPendiente || o.Status == OrderStatusProcesando
}
