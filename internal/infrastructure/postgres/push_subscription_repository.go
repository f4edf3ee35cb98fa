package postgres

import (
	"context"
	"fmt"

	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

var _ repository.PushSubscriptionRepository = (*PushSubscriptionRepo)(nil)

// PushSubscriptionRepo implementación de PushSubscriptionRepository sobre PostgreSQL.
type PushSubscriptionRepo struct {
	q Querier
}

// NewPushSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPushSubscriptionRepository(q Querier) *PushSubscriptionRepo {
	return &PushSubscriptionRepo{q: q}
}

// Upsert registra la suscripción; un endpoint repetido renueva claves y dueño.
func (r *PushSubscriptionRepo) Upsert(sub *entity.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, role, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (endpoint)
		DO UPDATE SET user_id = EXCLUDED.user_id, role = EXCLUDED.role,
		              p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth`
	_, err := r.q.Exec(context.Background(), query,
		sub.ID, sub.UserID, sub.Role, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert push subscription: %w", err)
	}
	return nil
}

// DeleteByEndpoint elimina la suscripción del usuario para ese endpoint.
func (r *PushSubscriptionRepo) DeleteByEndpoint(userID, endpoint string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`, userID, endpoint,
	)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// ListByUser devuelve las suscripciones activas del usuario.
func (r *PushSubscriptionRepo) ListByUser(userID string) ([]*entity.PushSubscription, error) {
	return r.list(`SELECT id, user_id, role, endpoint, p256dh, auth, created_at
		FROM push_subscriptions WHERE user_id = $1`, userID)
}

// ListByRole devuelve las suscripciones de todos los usuarios con ese rol
// (expande el destinatario reservado "admin").
func (r *PushSubscriptionRepo) ListByRole(role string) ([]*entity.PushSubscription, error) {
	return r.list(`SELECT id, user_id, role, endpoint, p256dh, auth, created_at
		FROM push_subscriptions WHERE role = $1`, role)
}

func (r *PushSubscriptionRepo) list(query string, arg any) ([]*entity.PushSubscription, error) {
	rows, err := r.q.Query(context.Background(), query, arg)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var result []*entity.PushSubscription
	for rows.Next() {
		var s entity.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Role, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}
