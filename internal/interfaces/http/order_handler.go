package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/application/orders"
	"github.com/avelez/pedidos-api/internal/application/proofs"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida de órdenes.
type OrderHandler struct {
	createUC    *orders.CreateOrderUseCase
	queryUC     *orders.QueryUseCase
	statusUC    *orders.UpdateStatusUseCase
	reconcileUC *orders.ReconcileUseCase
	proofsUC    *proofs.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(
	createUC *orders.CreateOrderUseCase,
	queryUC *orders.QueryUseCase,
	statusUC *orders.UpdateStatusUseCase,
	reconcileUC *orders.ReconcileUseCase,
	proofsUC *proofs.UseCase,
) *OrderHandler {
	return &OrderHandler{
		createUC:    createUC,
		queryUC:     queryUC,
		statusUC:    statusUC,
		reconcileUC: reconcileUC,
		proofsUC:    proofsUC,
	}
}

// Create crea una orden desde el carrito del cliente autenticado.
// POST /api/orders
//
// Acepta JSON plano, o multipart/form-data con el campo "orden" (JSON) más el
// archivo "comprobante" cuando el pago es por transferencia.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	var in dto.CreateOrderRequest
	var proof *entity.ProofOfPayment

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		raw := c.FormValue("orden")
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo orden requerido"})
		}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo orden con JSON inválido"})
		}

		if fh, err := c.FormFile("comprobante"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el comprobante"})
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el comprobante"})
			}
			proof, err = h.proofsUC.Store(fh.Filename, fh.Header.Get("Content-Type"), data)
			if err != nil {
				return respondProofError(c, err)
			}
		}
	} else {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	order, err := h.createUC.Create(c.Context(), orders.CreateOrderInput{
		CustomerID:      userID,
		Items:           in.Items,
		PaymentMethod:   in.PaymentMethod,
		Delivery:        in.Delivery,
		RequiresInvoice: in.RequiresInvoice,
		Billing:         in.Billing,
		Proof:           proof,
	})
	if err != nil {
		var unknown *domain.UnknownProductError
		var outOfStock *domain.OutOfStockError
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_CART", Message: "el carrito está vacío"})
		case errors.As(err, &unknown):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: err.Error()})
		case errors.As(err, &outOfStock):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OUT_OF_STOCK", Message: err.Error()})
		case errors.Is(err, domain.ErrInvalidDelivery):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DELIVERY", Message: "datos de entrega inconsistentes"})
		case errors.Is(err, domain.ErrIncompleteBillingData):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INCOMPLETE_BILLING", Message: "datos de facturación incompletos"})
		case errors.Is(err, domain.ErrMissingProofOfPayment):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_PROOF", Message: "la transferencia requiere comprobante de pago"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(orders.ToOrderResponse(order))
}

// List lista las órdenes visibles para el actor.
// GET /api/orders?estado=&limit=&offset=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	resp, err := h.queryUC.List(GetUserID(c), GetRole(c), c.Query("estado"), page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "estado desconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// GetByID obtiene una orden (dueño o admin).
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.queryUC.GetByID(GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// UpdateStatus transiciona el estado de una orden (solo admin).
// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.statusUC.UpdateStatus(c.Context(), GetRole(c), c.Params("id"), in.Status, in.EstimatedDeliveryDate)
	if err != nil {
		return respondTransitionError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// ConfirmPayment marca la transferencia de la orden como conciliada (solo admin).
// POST /api/orders/:id/payment/confirm
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	order, err := h.reconcileUC.Confirm(c.Context(), GetRole(c), GetUserID(c), c.Params("id"), in.Notes)
	if err != nil {
		return respondTransitionError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// RejectPayment rechaza la transferencia: cancela la orden y repone stock
// (solo admin).
// POST /api/orders/:id/payment/reject
func (h *OrderHandler) RejectPayment(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	order, err := h.reconcileUC.Reject(c.Context(), GetRole(c), GetUserID(c), c.Params("id"), in.Notes)
	if err != nil {
		return respondTransitionError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// DownloadProof descarga el comprobante de pago de la orden (dueño o admin).
// GET /api/orders/:id/comprobante
func (h *OrderHandler) DownloadProof(c *fiber.Ctx) error {
	order, err := h.queryUC.GetEntityByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	if GetRole(c) != "admin" && order.CustomerID != GetUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	}
	if order.Proof == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la orden no tiene comprobante"})
	}

	data, err := h.proofsUC.Get(order.Proof.BlobRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no disponible"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, order.Proof.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", order.Proof.FileName))
	return c.Send(data)
}

// respondProofError traduce errores de validación del comprobante.
func respondProofError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrFileTooLarge) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el comprobante excede el tamaño máximo"})
	}
	if errors.Is(err, domain.ErrUnsupportedMediaType) {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(dto.ErrorResponse{Code: "UNSUPPORTED_MEDIA", Message: "tipo de archivo no soportado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// respondTransitionError traduce errores de transición y conciliación.
func respondTransitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "transición de estado inválida"})
	case errors.Is(err, domain.ErrTerminalStatus):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATUS", Message: "la orden está en un estado terminal"})
	case errors.Is(err, domain.ErrPaymentNotConfirmed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PAYMENT_NOT_CONFIRMED", Message: "la transferencia aún no está confirmada"})
	case errors.Is(err, domain.ErrNotATransferOrder):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_TRANSFER", Message: "la orden no es de pago por transferencia"})
	case errors.Is(err, domain.ErrAlreadyReconciled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_RECONCILED", Message: "la transferencia ya fue conciliada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
