package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrOrderNotFound         = errors.New("orden no encontrada")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrEmptyCart             = errors.New("el carrito está vacío")
	ErrInvalidDelivery       = errors.New("ubicación de entrega inválida")
	ErrIncompleteBillingData = errors.New("datos de facturación incompletos")
	ErrMissingProofOfPayment = errors.New("comprobante de pago requerido para transferencia")
	ErrInvalidStatus         = errors.New("estado de orden desconocido")
	ErrTerminalStatus        = errors.New("la orden está en un estado terminal")
	ErrPaymentNotConfirmed   = errors.New("la transferencia no ha sido confirmada")
	ErrNotATransferOrder     = errors.New("la orden no es de pago por transferencia")
	ErrAlreadyReconciled     = errors.New("la transferencia ya fue conciliada")
	ErrOrderNotCompleted     = errors.New("la orden no está completada")
	ErrUnsupportedMediaType  = errors.New("tipo de archivo no permitido")
	ErrFileTooLarge          = errors.New("el archivo excede el tamaño máximo")
)

// OutOfStockError indica stock insuficiente para un producto concreto.
type OutOfStockError struct {
	ProductID string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s", e.ProductID)
}

// UnknownProductError indica que un producto del carrito ya no existe en el catálogo.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("producto desconocido %s", e.ProductID)
}
