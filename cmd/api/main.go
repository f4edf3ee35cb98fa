package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/avelez/pedidos-api/internal/application/billing"
	"github.com/avelez/pedidos-api/internal/application/notifications"
	"github.com/avelez/pedidos-api/internal/application/orders"
	"github.com/avelez/pedidos-api/internal/application/proofs"
	infrapdf "github.com/avelez/pedidos-api/internal/infrastructure/pdf"
	"github.com/avelez/pedidos-api/internal/infrastructure/postgres"
	infrapush "github.com/avelez/pedidos-api/internal/infrastructure/push"
	"github.com/avelez/pedidos-api/internal/infrastructure/storage"
	httpRouter "github.com/avelez/pedidos-api/internal/interfaces/http"
	"github.com/avelez/pedidos-api/pkg/config"
	"github.com/avelez/pedidos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	notifRepo := postgres.NewNotificationRepository(pool)
	subRepo := postgres.NewPushSubscriptionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	blobStore, err := storage.NewFSBlobStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de comprobantes")
	}
	proofsUC := proofs.NewUseCase(
		blobStore,
		cfg.Uploads.MaxSizeBytes,
		cfg.Uploads.MaxImageEdge,
		cfg.Uploads.JPEGQuality,
	)

	// Push deshabilitado sin claves VAPID; las notificaciones in-app siguen.
	pushSender := infrapush.NewWebPushSender(cfg.Push)
	if pushSender == nil {
		log.Warn().Msg("claves VAPID no configuradas, entrega push deshabilitada")
	}
	var sender notifications.PushSender
	if pushSender != nil {
		sender = pushSender
	}
	fanout := notifications.NewFanout(
		notifRepo, subRepo, sender,
		time.Duration(cfg.Push.TimeoutSeconds)*time.Second,
		log,
	)

	createOrderUC := orders.NewCreateOrderUseCase(txRunner, productRepo, fanout)
	queryOrdersUC := orders.NewQueryUseCase(orderRepo)
	updateStatusUC := orders.NewUpdateStatusUseCase(txRunner, fanout)
	reconcileUC := orders.NewReconcileUseCase(txRunner, fanout)
	notificationsUC := notifications.NewUseCase(notifRepo, subRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	billingUC := billing.NewUseCase(invoiceRepo, orderRepo, customerRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Uploads.MaxSizeBytes) + 1024*1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pedidos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateOrder:   createOrderUC,
		QueryOrders:   queryOrdersUC,
		UpdateStatus:  updateStatusUC,
		Reconcile:     reconcileUC,
		Proofs:        proofsUC,
		Notifications: notificationsUC,
		Billing:       billingUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
