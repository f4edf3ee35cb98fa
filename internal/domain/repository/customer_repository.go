package repository

import "github.com/avelez/pedidos-api/internal/domain/entity"

// CustomerRepository puerto de lectura de clientes (el CRUD vive en el back office).
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
}
