package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	txManager repo.TransactionManager
	orderRepo repo.OrderRepository
	gateway   payment.Gateway
	currency  string
}

func NewOrderUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	gateway payment.Gateway,
	currency string,
) *OrderUsecase {
	return &OrderUsecase{
		txManager: txManager,
		orderRepo: orderRepo,
		gateway:   gateway,
		currency:  currency,
	}
}

type PlaceOrderInput struct {
	ProductID      int64
	Quantity       int64
	AddressID      int64
	PaymentMethod  string
	IdempotencyKey string
}

type OrderOutput struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	Brand         string    `json:"brand"`
	Model         string    `json:"model"`
	UnitPrice     int64     `json:"unit_price"`
	Quantity      int64     `json:"quantity"`
	TotalPrice    int64     `json:"total_price"`
	ShipName      string    `json:"ship_name"`
	ShipCity      string    `json:"ship_city"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentID     string    `json:"payment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// ONLINE注文の作成直後だけ返す
	ClientSecret string `json:"client_secret,omitempty"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// PlaceOrderは即時購入。在庫の減算と注文作成を同一Txで行う。
// 同じIdempotencyKeyで再送されたら既存の注文をそのまま返す
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}
	if in.Quantity > 10 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity too large")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address id")
	}
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "idempotency key required")
	}
	method := model.PaymentMethod(in.PaymentMethod)
	if method != model.PaymentMethodOnline && method != model.PaymentMethodCOD {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	//同じキーの再送なら既存注文を返す（新しい注文は作らない）
	if existing, found, err := u.orderRepo.FindByIdempotencyKey(ctx, userID, in.IdempotencyKey); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	} else if found {
		return toOrderOutput(&existing), nil
	}

	var created model.Order
	createConflict := false
	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		//Txの中でもう一度キーを確認（同時リクエスト対策）
		if existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, in.IdempotencyKey); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		} else if found {
			created = existing
			return nil
		}

		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}

		addr, err := r.Addresses().FindByID(ctx, in.AddressID)
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, "invalid address")
		}
		if addr.UserID != userID {
			return NewHTTPError(http.StatusBadRequest, "invalid address")
		}

		//在庫が足りるときだけ減算。足りなければ409
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "out of stock")
		}

		unit := p.DiscountedPrice()
		order := model.Order{
			UserID:            userID,
			ProductID:         p.ID,
			BrandSnapshot:     p.Brand,
			ModelSnapshot:     p.Model,
			UnitPriceSnapshot: unit,
			Quantity:          in.Quantity,
			TotalPrice:        unit * in.Quantity,
			ShipName:          addr.Name,
			ShipPhone:         addr.Phone,
			ShipPostalCode:    addr.PostalCode,
			ShipLine1:         addr.Line1,
			ShipLine2:         addr.Line2,
			ShipCity:          addr.City,
			Status:            model.OrderStatusPlaced,
			PaymentMethod:     method,
			IdempotencyKey:    in.IdempotencyKey,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った等の競合の可能性。
			//Txを巻き戻して（在庫減算も戻る）、外で勝った方を探す
			createConflict = true
			return err
		}
		order.ID = orderID
		order.CreatedAt = time.Now()
		created = order
		return nil
	})
	if err != nil {
		//競合なら勝った方の注文をそのまま返す（同じキーは同じ注文）
		if createConflict {
			if existing, found, err2 := u.orderRepo.FindByIdempotencyKey(ctx, userID, in.IdempotencyKey); err2 == nil && found {
				return toOrderOutput(&existing), nil
			}
		}
		if _, ok := AsHTTPError(err); ok {
			return OrderOutput{}, err
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := toOrderOutput(&created)

	//ONLINE注文はサーバー側で決済を作成する。
	//クライアント申告の決済結果は信用しない（確定はwebhookのみ）
	if created.PaymentMethod == model.PaymentMethodOnline && created.PaymentRef == "" && created.Status == model.OrderStatusPlaced {
		intent, err := u.gateway.CreateIntent(ctx, created.TotalPrice, u.currency, map[string]string{
			"order_id": strconv.FormatInt(created.ID, 10),
		})
		if err != nil {
			zap.L().Error("payment intent create failed", zap.Int64("order_id", created.ID), zap.Error(err))
			//決済が作れなければ注文は不成立にし、在庫を戻す
			if rbErr := u.rollbackOrder(ctx, created.ID); rbErr != nil {
				zap.L().Error("order rollback failed", zap.Int64("order_id", created.ID), zap.Error(rbErr))
			}
			return OrderOutput{}, NewHTTPError(http.StatusBadGateway, "payment init failed")
		}
		if err := u.orderRepo.SetPaymentRef(ctx, created.ID, intent.Ref); err != nil {
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.ClientSecret = intent.ClientSecret
	}

	return out, nil
}

func (u *OrderUsecase) rollbackOrder(ctx context.Context, orderID int64) error {
	return u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusPlaced {
			return nil
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return err
		}
		return r.Inventory().IncreaseStock(ctx, o.ProductID, o.Quantity)
	})
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.orderRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(items))
	for i := range items {
		outs = append(outs, toOrderOutput(&items[i]))
	}
	return OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

// 他人の注文は存在自体を伏せて404
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
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
	if o.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return toOrderOutput(&o), nil
}

func toOrderOutput(o *model.Order) OrderOutput {
	return OrderOutput{
		ID:            o.ID,
		ProductID:     o.ProductID,
		Brand:         o.BrandSnapshot,
		Model:         o.ModelSnapshot,
		UnitPrice:     o.UnitPriceSnapshot,
		Quantity:      o.Quantity,
		TotalPrice:    o.TotalPrice,
		ShipName:      o.ShipName,
		ShipCity:      o.ShipCity,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		PaymentID:     o.PaymentID,
		CreatedAt:     o.CreatedAt,
	}
}
