package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/application/orders"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
)

func TestCreateOrder_CongelaPreciosYReservaStock(t *testing.T) {
	env := nuevoEntorno(
		producto("p-1", "Collar", "25000", "0.19", 10),
		producto("p-2", "Correa", "40000", "0", 5),
	)

	order := crearOrdenEfectivo(t, env,
		dto.CartItemRequest{ProductID: "p-1", Quantity: 2},
		dto.CartItemRequest{ProductID: "p-2", Quantity: 1},
	)

	assert.Equal(t, "ORD-000001", order.Number, "el número sale del consecutivo")
	assert.Equal(t, entity.OrderStatusPendiente, order.Status)
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].Price.Equal(decimal.RequireFromString("25000")),
		"el precio de línea viene del catálogo, no del cliente")
	assert.True(t, order.Total.Equal(decimal.RequireFromString("99500")))

	// La reserva descontó el stock del catálogo
	p1, _ := env.productRepo.GetByID("p-1")
	p2, _ := env.productRepo.GetByID("p-2")
	assert.Equal(t, int64(8), p1.Stock)
	assert.Equal(t, int64(4), p2.Stock)

	// Exactamente un aviso a administradores
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, entity.RecipientAdmins, env.notifier.sent[0].Recipient)
	assert.Equal(t, entity.NotifyNuevaOrden, env.notifier.sent[0].Kind)
}

func TestCreateOrder_CarritoVacio(t *testing.T) {
	env := nuevoEntorno()
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      retiroTienda(),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, env.notifier.sent, "una creación fallida no emite avisos")
}

func TestCreateOrder_ProductoDesconocido(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         []dto.CartItemRequest{{ProductID: "no-existe", Quantity: 1}},
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      retiroTienda(),
	})
	var unknown *domain.UnknownProductError
	assert.ErrorAs(t, err, &unknown)
}

func TestCreateOrder_StockInsuficiente(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 1))
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         []dto.CartItemRequest{{ProductID: "p-1", Quantity: 3}},
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      retiroTienda(),
	})
	var outOfStock *domain.OutOfStockError
	assert.ErrorAs(t, err, &outOfStock)
}

func TestCreateOrder_FalloEnUnaLineaRevierteTodaLaReserva(t *testing.T) {
	// p-1 alcanza, p-2 no: el decremento de p-1 debe deshacerse.
	env := nuevoEntorno(
		producto("p-1", "Collar", "25000", "0.19", 10),
		producto("p-2", "Correa", "40000", "0", 0),
	)
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID: "cliente-1",
		Items: []dto.CartItemRequest{
			{ProductID: "p-1", Quantity: 2},
			{ProductID: "p-2", Quantity: 1},
		},
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      retiroTienda(),
	})
	require.Error(t, err)

	p1, _ := env.productRepo.GetByID("p-1")
	assert.Equal(t, int64(10), p1.Stock, "el rollback devuelve la reserva parcial")
	assert.Empty(t, env.orderRepo.orders, "no queda orden persistida")
	assert.Empty(t, env.notifier.sent, "no queda notificación suelta")
}

func TestCreateOrder_EntregaInconsistente(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         []dto.CartItemRequest{{ProductID: "p-1", Quantity: 1}},
		PaymentMethod: entity.PaymentEfectivo,
		Delivery:      dto.DeliveryRequest{Type: entity.DeliveryDireccion, Address: "Calle 1"}, // sin coordenadas
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDelivery)
}

func TestCreateOrder_FacturaExigeDatosFiscalesCompletos(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	in := orders.CreateOrderInput{
		CustomerID:      "cliente-1",
		Items:           []dto.CartItemRequest{{ProductID: "p-1", Quantity: 1}},
		PaymentMethod:   entity.PaymentEfectivo,
		Delivery:        retiroTienda(),
		RequiresInvoice: true,
	}

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrIncompleteBillingData, "sin datos fiscales")

	in.Billing = &dto.BillingDataRequest{TaxIDType: "NIT", TaxID: "900-1", LegalName: "ACME SAS"}
	_, err = uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrIncompleteBillingData, "datos fiscales parciales")

	in.Billing = &dto.BillingDataRequest{
		TaxIDType: "NIT", TaxID: "900-1", LegalName: "ACME SAS",
		Address: "Cra 7", City: "Bogotá", Email: "f@acme.co",
	}
	order, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, order.Billing)
	assert.True(t, order.RequiresInvoice)
}

func TestCreateOrder_TransferenciaSinComprobante(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))
	uc := orders.NewCreateOrderUseCase(env.tx, env.productRepo, env.notifier)

	_, err := uc.Create(context.Background(), orders.CreateOrderInput{
		CustomerID:    "cliente-1",
		Items:         []dto.CartItemRequest{{ProductID: "p-1", Quantity: 1}},
		PaymentMethod: entity.PaymentTransferencia,
		Delivery:      retiroTienda(),
	})
	assert.ErrorIs(t, err, domain.ErrMissingProofOfPayment)
}

func TestCreateOrder_TransferenciaConComprobanteQuedaSinConciliar(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))

	order := crearOrdenTransferencia(t, env, dto.CartItemRequest{ProductID: "p-1", Quantity: 1})

	require.NotNil(t, order.Proof)
	require.NotNil(t, order.TransferConfirmation)
	assert.False(t, order.TransferConfirmation.Reconciled())
}

func TestCreateOrder_NumeracionConsecutiva(t *testing.T) {
	env := nuevoEntorno(producto("p-1", "Collar", "25000", "0.19", 10))

	o1 := crearOrdenEfectivo(t, env, dto.CartItemRequest{ProductID: "p-1", Quantity: 1})
	o2 := crearOrdenEfectivo(t, env, dto.CartItemRequest{ProductID: "p-1", Quantity: 1})

	assert.Equal(t, "ORD-000001", o1.Number)
	assert.Equal(t, "ORD-000002", o2.Number)
}
