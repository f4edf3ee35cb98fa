package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL
// (usable con pool o tx). Cabecera en orders, líneas congeladas en order_lines.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `
	id, number, customer_id, subtotal, tax, discount, total,
	payment_method, proof_blob_ref, proof_file_name, proof_mime_type,
	transfer_confirmed, transfer_confirmed_by, transfer_decided_at, transfer_notes,
	delivery_type, delivery_address, delivery_lat, delivery_lng, delivery_link,
	requires_invoice, billing_tax_id_type, billing_tax_id, billing_legal_name,
	billing_address, billing_city, billing_email,
	status, estimated_delivery_date, created_at, updated_at`

// NextNumber reserva el siguiente consecutivo de orden.
func (r *OrderRepo) NextNumber() (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('order_number_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// Create persiste la cabecera y las líneas de la orden.
func (r *OrderRepo) Create(order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	var (
		proofRef, proofName, proofMime     any
		confirmedBy, notes                 any
		decidedAt                          any
		confirmed                          bool
		billTaxIDType, billTaxID, billName any
		billAddress, billCity, billEmail   any
	)
	if order.Proof != nil {
		proofRef, proofName, proofMime = order.Proof.BlobRef, order.Proof.FileName, order.Proof.MimeType
	}
	if order.TransferConfirmation != nil {
		confirmed = order.TransferConfirmation.Confirmed
		confirmedBy = nullIfEmpty(order.TransferConfirmation.ConfirmedBy)
		notes = nullIfEmpty(order.TransferConfirmation.Notes)
		if order.TransferConfirmation.DecidedAt != nil {
			decidedAt = *order.TransferConfirmation.DecidedAt
		}
	}
	if order.Billing != nil {
		billTaxIDType = order.Billing.TaxIDType
		billTaxID = order.Billing.TaxID
		billName = order.Billing.LegalName
		billAddress = order.Billing.Address
		billCity = order.Billing.City
		billEmail = order.Billing.Email
	}

	query := `
		INSERT INTO orders (
			id, number, customer_id, subtotal, tax, discount, total,
			payment_method, proof_blob_ref, proof_file_name, proof_mime_type,
			transfer_confirmed, transfer_confirmed_by, transfer_decided_at, transfer_notes,
			delivery_type, delivery_address, delivery_lat, delivery_lng, delivery_link,
			requires_invoice, billing_tax_id_type, billing_tax_id, billing_legal_name,
			billing_address, billing_city, billing_email,
			status, estimated_delivery_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23, $24,
			$25, $26, $27,
			$28, $29, $30, $31
		)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Number, order.CustomerID,
		order.Subtotal, order.Tax, order.Discount, order.Total,
		order.PaymentMethod, proofRef, proofName, proofMime,
		confirmed, confirmedBy, decidedAt, notes,
		order.Location.Type, nullIfEmpty(order.Location.Address), order.Location.Lat, order.Location.Lng, nullIfEmpty(order.Location.Link),
		order.RequiresInvoice, billTaxIDType, billTaxID, billName,
		billAddress, billCity, billEmail,
		order.Status, order.EstimatedDeliveryDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number already exists: %w", err)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (id, order_id, position, product_id, name, price, tax_rate, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, line := range order.Lines {
		_, err := r.q.Exec(context.Background(), lineQuery,
			uuid.New().String(), order.ID, i, line.ProductID, line.Name, line.Price, line.TaxRate, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas, o nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.get(id, false)
}

// GetByIDForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE)
// para serializar transiciones concurrentes.
func (r *OrderRepo) GetByIDForUpdate(id string) (*entity.Order, error) {
	return r.get(id, true)
}

func (r *OrderRepo) get(id string, forUpdate bool) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	order, err := r.scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus persiste estado, fecha estimada de entrega y updated_at.
func (r *OrderRepo) UpdateStatus(order *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, estimated_delivery_date = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.EstimatedDeliveryDate, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// UpdateTransferConfirmation persiste la decisión de conciliación.
func (r *OrderRepo) UpdateTransferConfirmation(order *entity.Order) error {
	c := order.TransferConfirmation
	if c == nil {
		return fmt.Errorf("update transfer confirmation: orden sin carga de conciliación")
	}
	query := `
		UPDATE orders
		SET transfer_confirmed = $2, transfer_confirmed_by = $3,
		    transfer_decided_at = $4, transfer_notes = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, c.Confirmed, nullIfEmpty(c.ConfirmedBy), c.DecidedAt, nullIfEmpty(c.Notes), order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer confirmation: %w", err)
	}
	return nil
}

// ListByCustomer devuelve las órdenes del cliente, más recientes primero.
func (r *OrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, customerID, limit, offset)
}

// List devuelve todas las órdenes (filtro opcional por estado), más recientes primero.
func (r *OrderRepo) List(status string, limit, offset int) ([]*entity.Order, error) {
	if status == "" {
		query := `SELECT ` + orderColumns + `
			FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		return r.list(query, limit, offset)
	}
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, status, limit, offset)
}

func (r *OrderRepo) list(query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var result []*entity.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, order := range result {
		if err := r.loadLines(order); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scanOrder arma la entidad desde una fila con orderColumns.
func (r *OrderRepo) scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o                              entity.Order
		proofRef, proofName, proofMime *string
		confirmed                      bool
		confirmedBy, notes             *string
		decidedAt                      *time.Time
		deliveryAddress, deliveryLink  *string
		billTaxIDType, billTaxID       *string
		billName, billAddress          *string
		billCity, billEmail            *string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.Subtotal, &o.Tax, &o.Discount, &o.Total,
		&o.PaymentMethod, &proofRef, &proofName, &proofMime,
		&confirmed, &confirmedBy, &decidedAt, &notes,
		&o.Location.Type, &deliveryAddress, &o.Location.Lat, &o.Location.Lng, &deliveryLink,
		&o.RequiresInvoice, &billTaxIDType, &billTaxID, &billName,
		&billAddress, &billCity, &billEmail,
		&o.Status, &o.EstimatedDeliveryDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deliveryAddress != nil {
		o.Location.Address = *deliveryAddress
	}
	if deliveryLink != nil {
		o.Location.Link = *deliveryLink
	}
	if proofRef != nil {
		o.Proof = &entity.ProofOfPayment{BlobRef: *proofRef}
		if proofName != nil {
			o.Proof.FileName = *proofName
		}
		if proofMime != nil {
			o.Proof.MimeType = *proofMime
		}
	}
	if o.PaymentMethod == entity.PaymentTransferencia {
		o.TransferConfirmation = &entity.TransferConfirmation{
			Confirmed: confirmed,
			DecidedAt: decidedAt,
		}
		if confirmedBy != nil {
			o.TransferConfirmation.ConfirmedBy = *confirmedBy
		}
		if notes != nil {
			o.TransferConfirmation.Notes = *notes
		}
	}
	if billTaxIDType != nil {
		o.Billing = &entity.BillingData{
			TaxIDType: *billTaxIDType,
			TaxID:     deref(billTaxID),
			LegalName: deref(billName),
			Address:   deref(billAddress),
			City:      deref(billCity),
			Email:     deref(billEmail),
		}
	}
	return &o, nil
}

// loadLines carga las líneas congeladas en orden de posición.
func (r *OrderRepo) loadLines(order *entity.Order) error {
	query := `
		SELECT product_id, name, price, tax_rate, quantity
		FROM order_lines WHERE order_id = $1
		ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, order.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	order.Lines = order.Lines[:0]
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.TaxRate, &l.Quantity); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	return rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
