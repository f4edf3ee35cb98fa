package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de NotificationRepository sobre PostgreSQL.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste la notificación.
func (r *NotificationRepo) Create(n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notifications (id, recipient, order_id, title, message, icon, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.Recipient, nullIfEmpty(n.OrderID), n.Title, n.Message, n.Icon, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByRecipient devuelve las notificaciones del destinatario, más recientes primero.
func (r *NotificationRepo) ListByRecipient(recipient string, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, recipient, COALESCE(order_id, ''), title, message, icon, read, created_at
		FROM notifications WHERE recipient = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, recipient, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var result []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.OrderID, &n.Title, &n.Message, &n.Icon, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

// CountUnread cuenta las no leídas del destinatario.
func (r *NotificationRepo) CountUnread(recipient string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND read = false`, recipient,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead marca como leída si pertenece al destinatario.
func (r *NotificationRepo) MarkRead(id, recipient string) (bool, error) {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE notifications SET read = true WHERE id = $1 AND recipient = $2`, id, recipient,
	)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
