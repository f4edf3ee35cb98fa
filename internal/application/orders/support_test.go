package orders_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/application/orders"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

// memOrderRepo repositorio de órdenes en memoria.
type memOrderRepo struct {
	orders         map[string]*entity.Order
	seq            int64
	forUpdateCalls int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*entity.Order)}
}

func (r *memOrderRepo) Create(order *entity.Order) error {
	if order.ID == "" {
		order.ID = fmt.Sprintf("orden-%d", len(r.orders)+1)
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.orders[id], nil
}

func (r *memOrderRepo) GetByIDForUpdate(id string) (*entity.Order, error) {
	r.forUpdateCalls++
	return r.orders[id], nil
}

func (r *memOrderRepo) NextNumber() (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memOrderRepo) UpdateStatus(order *entity.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) UpdateTransferConfirmation(order *entity.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) List(status string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// memProductRepo catálogo en memoria con decremento condicional.
type memProductRepo struct {
	products map[string]*entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *memProductRepo) DecrementStock(productID string, qty int64) error {
	p, ok := r.products[productID]
	if !ok {
		return &domain.UnknownProductError{ProductID: productID}
	}
	if p.Stock < qty {
		return &domain.OutOfStockError{ProductID: productID}
	}
	p.Stock -= qty
	return nil
}

func (r *memProductRepo) RestoreStock(productID string, qty int64) error {
	p, ok := r.products[productID]
	if !ok {
		return &domain.UnknownProductError{ProductID: productID}
	}
	p.Stock += qty
	return nil
}

// memTxRunner ejecuta fn contra los repos en memoria. Para imitar el rollback
// real, toma un snapshot del stock y de las órdenes y lo restaura si fn falla.
type memTxRunner struct {
	orderRepo   *memOrderRepo
	productRepo *memProductRepo
}

func (tx *memTxRunner) Run(_ context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) error) error {
	stockSnap := make(map[string]int64, len(tx.productRepo.products))
	for id, p := range tx.productRepo.products {
		stockSnap[id] = p.Stock
	}
	orderSnap := make(map[string]entity.Order, len(tx.orderRepo.orders))
	for id, o := range tx.orderRepo.orders {
		orderSnap[id] = *o
	}

	if err := fn(tx.orderRepo, tx.productRepo); err != nil {
		for id, stock := range stockSnap {
			tx.productRepo.products[id].Stock = stock
		}
		tx.orderRepo.orders = make(map[string]*entity.Order, len(orderSnap))
		for id := range orderSnap {
			o := orderSnap[id]
			tx.orderRepo.orders[id] = &o
		}
		return err
	}
	return nil
}

// sentNotification registro de una emisión del notificador.
type sentNotification struct {
	Recipient string
	Kind      string
	OrderID   string
}

// recorderNotifier acumula las emisiones para afirmar sobre ellas.
type recorderNotifier struct {
	sent []sentNotification
}

func (n *recorderNotifier) Notify(_ context.Context, recipient, kind string, order *entity.Order) {
	n.sent = append(n.sent, sentNotification{Recipient: recipient, Kind: kind, OrderID: order.ID})
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado de escenarios
// ──────────────────────────────────────────────────────────────────────────────

// entorno agrupa los dobles compartidos por los tres casos de uso de órdenes.
type entorno struct {
	orderRepo   *memOrderRepo
	productRepo *memProductRepo
	tx          *memTxRunner
	notifier    *recorderNotifier
}

func nuevoEntorno(products ...*entity.Product) *entorno {
	orderRepo := newMemOrderRepo()
	productRepo := newMemProductRepo(products...)
	return &entorno{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		tx:          &memTxRunner{orderRepo: orderRepo, productRepo: productRepo},
		notifier:    &recorderNotifier{},
	}
}

func producto(id, nombre, precio string, iva string, stock int64) *entity.Product {
	return &entity.Product{
		ID:      id,
		Name:    nombre,
		Price:   decimal.RequireFromString(precio),
		TaxRate: decimal.RequireFromString(iva),
		Stock:   stock,
	}
}

func retiroTienda() dto.DeliveryRequest {
	return dto.DeliveryRequest{Type: entity.DeliveryRetiro}
}

// crearOrdenEfectivo pasa por el caso de uso real de creación.
func crearOrdenEfectivo(t *testing.T, env *entorno, items ...dto.CartItemRequest) *entity.Order {
	t.Helper()
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)
	order, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         items,
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      retiroTienda(),
	})
	require.NoError(t, err)
	return order
}

// crearOrdenTransferencia crea una orden por transferencia con comprobante.
func crearOrdenTransferencia(t *testing.T, env *entorno, items ...dto.CartItemRequest) *entity.Order {
	t.Helper()
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)
	order, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         items,
		PaymentMethod: entity.PaymentTransferencia,
		Delivery:      retiroTienda(),
		Proof:         &entity.ProofOfPayment{BlobRef: "blob-1.jpg", FileName: "pago.jpg", MimeType: "image/jpeg"},
	})
	require.NoError(t, err)
	return order
}

func confirmada(order *entity.Order) *entity.Order {
	now := time.Now()
	order.TransferConfirmation = &entity.TransferConfirmation{
		Confirmed: true, ConfirmedBy: "admin-1", DecidedAt: &now,
	}
	return order
}
