// Package push implementa la entrega web push con claves VAPID.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/avelez/pedidos-api/internal/application/notifications"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/pkg/config"
)

var _ notifications.PushSender = (*WebPushSender)(nil)

// WebPushSender entrega payloads por el protocolo Web Push (RFC 8030)
// firmados con las claves VAPID del sitio.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subject    string
}

// NewWebPushSender devuelve nil si las claves VAPID no están configuradas,
// lo que deshabilita push sin afectar las notificaciones in-app.
func NewWebPushSender(cfg config.PushConfig) *WebPushSender {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil
	}
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.Subject,
	}
}

// Deliver envía el payload a una suscripción. El contexto acota la petición
// HTTP al servicio push del navegador.
func (s *WebPushSender) Deliver(ctx context.Context, sub *entity.PushSubscription, payload notifications.PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar payload push: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             3600,
	})
	if err != nil {
		return fmt.Errorf("enviar push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("servicio push respondió %d", resp.StatusCode)
	}
	return nil
}
