package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// UseCase superficie de notificaciones hacia el usuario: listado, marcar
// leída y alta/baja de suscripciones push.
type UseCase struct {
	notifRepo repository.NotificationRepository
	subRepo   repository.PushSubscriptionRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(notifRepo repository.NotificationRepository, subRepo repository.PushSubscriptionRepository) *UseCase {
	return &UseCase{notifRepo: notifRepo, subRepo: subRepo}
}

// List devuelve las notificaciones del usuario (los admins ven también las
// dirigidas al destinatario reservado "admin" vía su propio recipient).
func (uc *UseCase) List(userID, role string, page dto.PageRequest) (*dto.NotificationListResponse, error) {
	page.DefaultPage()

	recipient := userID
	if role == "admin" {
		recipient = entity.RecipientAdmins
	}

	list, err := uc.notifRepo.ListByRecipient(recipient, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	unread, err := uc.notifRepo.CountUnread(recipient)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			OrderID:   n.OrderID,
			Title:     n.Title,
			Message:   n.Message,
			Icon:      n.Icon,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return &dto.NotificationListResponse{
		Items:  items,
		Unread: unread,
		Page:   dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// MarkRead marca una notificación como leída; solo el destinatario puede.
func (uc *UseCase) MarkRead(userID, role, notificationID string) error {
	recipient := userID
	if role == "admin" {
		recipient = entity.RecipientAdmins
	}
	ok, err := uc.notifRepo.MarkRead(notificationID, recipient)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Subscribe registra (o renueva) la suscripción push del usuario.
func (uc *UseCase) Subscribe(userID, role string, in dto.PushSubscribeRequest) error {
	if in.Endpoint == "" || in.Keys.P256dh == "" || in.Keys.Auth == "" {
		return domain.ErrInvalidInput
	}
	sub := &entity.PushSubscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      role,
		Endpoint:  in.Endpoint,
		P256dh:    in.Keys.P256dh,
		Auth:      in.Keys.Auth,
		CreatedAt: time.Now(),
	}
	return uc.subRepo.Upsert(sub)
}

// Unsubscribe da de baja la suscripción del endpoint indicado.
func (uc *UseCase) Unsubscribe(userID, endpoint string) error {
	if endpoint == "" {
		return domain.ErrInvalidInput
	}
	return uc.subRepo.DeleteByEndpoint(userID, endpoint)
}
