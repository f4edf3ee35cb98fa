package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// ProductRepository puerto de lectura de catálogo y mutación de stock.
// Los decrementos/reposiciones ligados a órdenes son responsabilidad exclusiva
// de esta API; el resto del catálogo lo administra el back office.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// DecrementStock descuenta qty de forma atómica (compare-and-decrement por
	// fila de producto). Retorna *domain.OutOfStockError si el stock restante
	// sería negativo.
	DecrementStock(productID string, qty int64) error
	// RestoreStock devuelve qty unidades al contador (inversa del decremento).
	RestoreStock(productID string, qty int64) error
}
