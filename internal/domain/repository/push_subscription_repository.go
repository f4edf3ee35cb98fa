package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// PushSubscriptionRepository puerto de persistencia para suscripciones web push.
type PushSubscriptionRepository interface {
	// Upsert registra la suscripción; un endpoint repetido actualiza las claves.
	Upsert(sub *entity.PushSubscription) error
	DeleteByEndpoint(userID, endpoint string) error
	ListByUser(userID string) ([]*entity.PushSubscription, error)
	ListByRole(role string) ([]*entity.PushSubscription, error)
}
