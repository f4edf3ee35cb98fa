package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avelez/pedidos-api/internal/application/billing"
	"github.com/avelez/pedidos-api/internal/application/notifications"
	"github.com/avelez/pedidos-api/internal/application/orders"
	"github.com/avelez/pedidos-api/internal/application/proofs"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateOrder   *orders.CreateOrderUseCase
	QueryOrders   *orders.QueryUseCase
	UpdateStatus  *orders.UpdateStatusUseCase
	Reconcile     *orders.ReconcileUseCase
	Proofs        *proofs.UseCase
	Notifications *notifications.UseCase
	Billing       *billing.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas las rutas de negocio exigen
// Bearer Token; las de gestión exigen además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole("admin")

	// Órdenes
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.QueryOrders, deps.UpdateStatus, deps.Reconcile, deps.Proofs)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/comprobante", orderHandler.DownloadProof)
	ordersGroup.Put("/:id/status", admin, orderHandler.UpdateStatus)
	ordersGroup.Post("/:id/payment/confirm", admin, orderHandler.ConfirmPayment)
	ordersGroup.Post("/:id/payment/reject", admin, orderHandler.RejectPayment)

	// Facturación
	invoiceHandler := NewInvoiceHandler(deps.Billing)
	ordersGroup.Post("/:id/invoice", invoiceHandler.CreateForOrder)
	invoices := protected.Group("/invoices")
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	// Notificaciones y push
	notificationHandler := NewNotificationHandler(deps.Notifications)
	notifGroup := protected.Group("/notifications")
	notifGroup.Get("/", notificationHandler.List)
	notifGroup.Put("/:id/read", notificationHandler.MarkRead)

	pushGroup := protected.Group("/push")
	pushGroup.Post("/subscribe", notificationHandler.Subscribe)
	pushGroup.Delete("/subscribe", notificationHandler.Unsubscribe)
}
