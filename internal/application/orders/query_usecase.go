package orders

import (
	"github.com/avelez/pedidos-api/internal/application/dto"
	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
	"github.com/avelez/pedidos-api/internal/domain/repository"
)

// QueryUseCase lecturas de órdenes para las UIs de cliente y admin.
type QueryUseCase struct {
	orderRepo repository.OrderRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(orderRepo repository.OrderRepository) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo}
}

// GetByID devuelve la orden si el actor es admin o su dueño.
func (uc *QueryUseCase) GetByID(actorID, actorRole, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if actorRole != "admin" && order.CustomerID != actorID {
		return nil, domain.ErrForbidden
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetEntityByID devuelve la entidad completa (uso interno: descarga de
// comprobante, facturación).
func (uc *QueryUseCase) GetEntityByID(orderID string) (*entity.Order, error) {
	return uc.orderRepo.GetByID(orderID)
}

// List devuelve las órdenes visibles para el actor: todas (con filtro de
// estado opcional) para admin, solo las propias para cliente.
func (uc *QueryUseCase) List(actorID, actorRole, status string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	if status != "" && !entity.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var (
		list []*entity.Order
		err  error
	)
	if actorRole == "admin" {
		list, err = uc.orderRepo.List(status, page.Limit, page.Offset)
	} else {
		list, err = uc.orderRepo.ListByCustomer(actorID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}

	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, ToOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ToOrderResponse mapea la entidad a su representación HTTP.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	resp := dto.OrderResponse{
		ID:                    o.ID,
		Number:                o.Number,
		CustomerID:            o.CustomerID,
		Lines:                 lines,
		Subtotal:              o.Subtotal,
		Tax:                   o.Tax,
		Discount:              o.Discount,
		Total:                 o.Total,
		PaymentMethod:         o.PaymentMethod,
		HasProof:              o.Proof != nil,
		DeliveryType:          o.Location.Type,
		DeliveryAddress:       o.Location.Address,
		RequiresInvoice:       o.RequiresInvoice,
		Status:                o.Status,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
	if o.TransferConfirmation != nil {
		resp.TransferConfirmation = &dto.TransferConfirmationResponse{
			Confirmed:   o.TransferConfirmation.Confirmed,
			ConfirmedBy: o.TransferConfirmation.ConfirmedBy,
			Date:        o.TransferConfirmation.DecidedAt,
			Notes:       o.TransferConfirmation.Notes,
		}
	}
	return resp
}
