package entity

import "time"

// Customer cliente de la tienda (lectura; el CRUD vive en el back office).
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
