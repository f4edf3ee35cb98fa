package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/pedidos-api/internal/application/notifications"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memNotifRepo struct {
	created   []*entity.Notification
	createErr error
}

func (r *memNotifRepo) Create(n *entity.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, n)
	return nil
}

func (r *memNotifRepo) ListByRecipient(recipient string, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range r.created {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotifRepo) CountUnread(recipient string) (int, error) {
	count := 0
	for _, n := range r.created {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *memNotifRepo) MarkRead(id, recipient string) (bool, error) {
	for _, n := range r.created {
		if n.ID == id && n.Recipient == recipient {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

type memSubRepo struct {
	subs []*entity.PushSubscription
}

func (r *memSubRepo) Upsert(sub *entity.PushSubscription) error {
	for i, s := range r.subs {
		if s.Endpoint == sub.Endpoint {
			r.subs[i] = sub
			return nil
		}
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *memSubRepo) DeleteByEndpoint(userID, endpoint string) error {
	out := r.subs[:0]
	for _, s := range r.subs {
		if !(s.UserID == userID && s.Endpoint == endpoint) {
			out = append(out, s)
		}
	}
	r.subs = out
	return nil
}

func (r *memSubRepo) ListByUser(userID string) ([]*entity.PushSubscription, error) {
	var out []*entity.PushSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSubRepo) ListByRole(role string) ([]*entity.PushSubscription, error) {
	var out []*entity.PushSubscription
	for _, s := range r.subs {
		if s.Role == role {
			out = append(out, s)
		}
	}
	return out, nil
}

type recorderSender struct {
	delivered []string // endpoints
	failWith  error
}

func (s *recorderSender) Deliver(_ context.Context, sub *entity.PushSubscription, _ notifications.PushPayload) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.delivered = append(s.delivered, sub.Endpoint)
	return nil
}

func ordenDePrueba() *entity.Order {
	return &entity.Order{
		ID:         "o-1",
		Number:     "ORD-000007",
		CustomerID: "cliente-1",
		Total:      decimal.RequireFromString("59500"),
		Status:     entity.OrderStatusProcesando,
	}
}

func suscripcion(userID, role, endpoint string) *entity.PushSubscription {
	return &entity.PushSubscription{
		ID: endpoint, UserID: userID, Role: role,
		Endpoint: endpoint, P256dh: "clave", Auth: "auth",
		CreatedAt: time.Now(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fanout
// ──────────────────────────────────────────────────────────────────────────────

func TestFanout_PersisteAvisoYEntregaPushAlCliente(t *testing.T) {
	notifRepo := &memNotifRepo{}
	subRepo := &memSubRepo{}
	require.NoError(t, subRepo.Upsert(suscripcion("cliente-1", "cliente", "https://push/ep-1")))
	require.NoError(t, subRepo.Upsert(suscripcion("cliente-2", "cliente", "https://push/ep-2")))
	sender := &recorderSender{}
	fanout := notifications.NewFanout(notifRepo, subRepo, sender, time.Second, logger.Nop())

	fanout.Notify(context.Background(), "cliente-1", entity.NotifyEstadoActualizado, ordenDePrueba())

	require.Len(t, notifRepo.created, 1)
	n := notifRepo.created[0]
	assert.Equal(t, "cliente-1", n.Recipient)
	assert.Equal(t, "o-1", n.OrderID)
	assert.Contains(t, n.Message, "ORD-000007", "el mensaje referencia el número legible")
	assert.Contains(t, n.Message, "en preparación", "el estado va en lenguaje del cliente")
	assert.False(t, n.Read)

	assert.Equal(t, []string{"https://push/ep-1"}, sender.delivered,
		"solo las suscripciones del destinatario reciben push")
}

func TestFanout_DestinatarioAdminExpandeAtodosLosAdmins(t *testing.T) {
	notifRepo := &memNotifRepo{}
	subRepo := &memSubRepo{}
	require.NoError(t, subRepo.Upsert(suscripcion("admin-1", "admin", "https://push/adm-1")))
	require.NoError(t, subRepo.Upsert(suscripcion("admin-2", "admin", "https://push/adm-2")))
	require.NoError(t, subRepo.Upsert(suscripcion("cliente-1", "cliente", "https://push/cli-1")))
	sender := &recorderSender{}
	fanout := notifications.NewFanout(notifRepo, subRepo, sender, time.Second, logger.Nop())

	fanout.Notify(context.Background(), entity.RecipientAdmins, entity.NotifyNuevaOrden, ordenDePrueba())

	require.Len(t, notifRepo.created, 1, "un solo aviso in-app bajo el destinatario reservado")
	assert.Equal(t, entity.RecipientAdmins, notifRepo.created[0].Recipient)
	assert.ElementsMatch(t, []string{"https://push/adm-1", "https://push/adm-2"}, sender.delivered)
}

func TestFanout_FalloDePushNoSePropaga(t *testing.T) {
	notifRepo := &memNotifRepo{}
	subRepo := &memSubRepo{}
	require.NoError(t, subRepo.Upsert(suscripcion("cliente-1", "cliente", "https://push/ep-1")))
	sender := &recorderSender{failWith: errors.New("servicio push caído")}
	fanout := notifications.NewFanout(notifRepo, subRepo, sender, time.Second, logger.Nop())

	// No retorna error ni entra en pánico: el push es best-effort.
	fanout.Notify(context.Background(), "cliente-1", entity.NotifyPagoConfirmado, ordenDePrueba())

	assert.Len(t, notifRepo.created, 1, "el aviso in-app queda aunque el push falle")
}

func TestFanout_SinSenderSoloPersiste(t *testing.T) {
	notifRepo := &memNotifRepo{}
	subRepo := &memSubRepo{}
	fanout := notifications.NewFanout(notifRepo, subRepo, nil, time.Second, logger.Nop())

	fanout.Notify(context.Background(), "cliente-1", entity.NotifyPagoRechazado, ordenDePrueba())

	require.Len(t, notifRepo.created, 1)
	assert.Contains(t, notifRepo.created[0].Title, "Pago rechazado")
}
