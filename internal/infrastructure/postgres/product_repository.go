package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, name, price, tax_rate, stock, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.TaxRate, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// DecrementStock descuenta qty en un solo UPDATE condicional: la fila solo se
// toca si el stock alcanza, así dos checkouts concurrentes sobre el mismo
// producto no pueden dejar el contador negativo.
func (r *ProductRepo) DecrementStock(productID string, qty int64) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`
	tag, err := r.q.Exec(context.Background(), query, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Fila inexistente o stock insuficiente: distinguir para el caller
		exists, err := r.exists(productID)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.UnknownProductError{ProductID: productID}
		}
		return &domain.OutOfStockError{ProductID: productID}
	}
	return nil
}

// RestoreStock devuelve qty unidades al contador del producto.
func (r *ProductRepo) RestoreStock(productID string, qty int64) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, productID, qty)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.UnknownProductError{ProductID: productID}
	}
	return nil
}

func (r *ProductRepo) exists(id string) (bool, error) {
	var one int
	err := r.q.QueryRow(context.Background(), `SELECT 1 FROM products WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check product: %w", err)
	}
	return true, nil
}
