package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 注文ステータスの前進のみ許す遷移表。
// CANCELLEDは発送前（PLACED/CONFIRMED）からのみ
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPlaced:    {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
}

func canTransitionOrder(from, to model.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminOrderUsecase struct {
	txManager repo.TransactionManager
	orderRepo repo.OrderRepository
}

func NewAdminOrderUsecase(txManager repo.TransactionManager, orderRepo repo.OrderRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		txManager: txManager,
		orderRepo: orderRepo,
	}
}

type AdminListOrdersInput struct {
	Page          int
	Limit         int
	Status        string
	PaymentMethod string
	UserID        *int64
	From          *time.Time
	To            *time.Time
}

func (u *AdminOrderUsecase) ListOrders(ctx context.Context, in AdminListOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.OrderStatus(in.Status) {
	case "", model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	switch model.PaymentMethod(in.PaymentMethod) {
	case "", model.PaymentMethodOnline, model.PaymentMethodCOD:
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	items, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:          in.Page,
		Limit:         in.Limit,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		UserID:        in.UserID,
		From:          in.From,
		To:            in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(items))
	for i := range items {
		outs = append(outs, toOrderOutput(&items[i]))
	}
	return OrderListOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AdminOrderUsecase) GetOrderDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(&o), nil
}

// UpdateOrderStatusはステータスを進める。
// 同じステータスへの再送は成功扱いで何もしない。
// キャンセル時は在庫を同一Txで戻す
func (u *AdminOrderUsecase) UpdateOrderStatus(ctx context.Context, adminUserID int64, orderID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	next := model.OrderStatus(status)
	switch next {
	case model.OrderStatusConfirmed, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//冪等：変化なしは成功
		if o.Status == next {
			return nil
		}
		if !canTransitionOrder(o.Status, next) {
			return NewHTTPError(http.StatusConflict, "invalid status transition")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//発送前キャンセルは在庫を戻す
		if next == model.OrderStatusCancelled {
			if err := r.Inventory().IncreaseStock(ctx, o.ProductID, o.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(string(o.Status)),
			AfterJSON:    statusJSON(string(next)),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
