package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
	"github.com/avelez/pedidos-api/pkg/logger"
)

// PushPayload mensaje entregado por el transporte push.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushSender puerto del transporte push (best-effort; los fallos nunca
// afectan la transición que originó el aviso).
type PushSender interface {
	Deliver(ctx context.Context, sub *entity.PushSubscription, payload PushPayload) error
}

// Fanout persiste el aviso in-app e intenta entrega push a las suscripciones
// activas del destinatario. Implementa orders.Notifier.
type Fanout struct {
	notifRepo repository.NotificationRepository
	subRepo   repository.PushSubscriptionRepository
	sender    PushSender
	timeout   time.Duration
	log       *logger.Logger
}

// NewFanout construye el fan-out. sender puede ser nil (push deshabilitado).
func NewFanout(
	notifRepo repository.NotificationRepository,
	subRepo repository.PushSubscriptionRepository,
	sender PushSender,
	timeout time.Duration,
	log *logger.Logger,
) *Fanout {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fanout{notifRepo: notifRepo, subRepo: subRepo, sender: sender, timeout: timeout, log: log}
}

// statusLabels texto hacia el cliente por estado de orden.
var statusLabels = map[string]string{
	entity.OrderStatusPendiente:  "pendiente de confirmación",
	entity.OrderStatusProcesando: "en preparación",
	entity.OrderStatusCompletado: "completada",
	entity.OrderStatusCancelado:  "cancelada",
}

// render arma título/mensaje/icono desde la plantilla fija del tipo de evento.
func render(kind string, order *entity.Order) (title, message, icon string) {
	switch kind {
	case entity.NotifyNuevaOrden:
		return "Nueva orden recibida",
			fmt.Sprintf("Orden %s por $%s pendiente de gestión", order.Number, order.Total.StringFixed(2)),
			"🛒"
	case entity.NotifyEstadoActualizado:
		label := statusLabels[order.Status]
		if label == "" {
			label = order.Status
		}
		return "Tu orden cambió de estado",
			fmt.Sprintf("La orden %s ahora está %s", order.Number, label),
			"📦"
	case entity.NotifyPagoConfirmado:
		return "Pago confirmado",
			fmt.Sprintf("Recibimos tu transferencia de la orden %s. ¡Gracias!", order.Number),
			"✅"
	case entity.NotifyPagoRechazado:
		return "Pago rechazado",
			fmt.Sprintf("No pudimos verificar la transferencia de la orden %s; la orden fue cancelada", order.Number),
			"❌"
	}
	return "Actualización de tu orden", fmt.Sprintf("Orden %s actualizada", order.Number), "🔔"
}

// Notify persiste el aviso y dispara push best-effort. Cualquier fallo se
// registra y se traga: la transición que lo originó ya está comprometida.
func (f *Fanout) Notify(ctx context.Context, recipient, kind string, order *entity.Order) {
	title, message, icon := render(kind, order)

	n := &entity.Notification{
		ID:        uuid.New().String(),
		Recipient: recipient,
		OrderID:   order.ID,
		Title:     title,
		Message:   message,
		Icon:      icon,
		CreatedAt: time.Now(),
	}
	if err := f.notifRepo.Create(n); err != nil {
		f.log.Error().Err(err).
			Str("recipient", recipient).
			Str("kind", kind).
			Str("order_id", order.ID).
			Msg("persistir notificación")
	}

	f.push(ctx, recipient, PushPayload{
		Title: title,
		Body:  message,
		Icon:  icon,
		Data:  map[string]string{"orden_id": order.ID, "tipo": kind},
	})
}

// push entrega el payload a cada suscripción activa del destinatario, con
// timeout por entrega. Sin sender o sin suscripciones es un no-op silencioso.
func (f *Fanout) push(ctx context.Context, recipient string, payload PushPayload) {
	if f.sender == nil {
		return
	}

	var (
		subs []*entity.PushSubscription
		err  error
	)
	if recipient == entity.RecipientAdmins {
		subs, err = f.subRepo.ListByRole("admin")
	} else {
		subs, err = f.subRepo.ListByUser(recipient)
	}
	if err != nil {
		f.log.Warn().Err(err).Str("recipient", recipient).Msg("listar suscripciones push")
		return
	}

	for _, sub := range subs {
		deliverCtx, cancel := context.WithTimeout(ctx, f.timeout)
		if err := f.sender.Deliver(deliverCtx, sub, payload); err != nil {
			f.log.Warn().Err(err).
				Str("recipient", recipient).
				Str("endpoint", sub.Endpoint).
				Msg("entrega push fallida")
		}
		cancel()
	}
}
