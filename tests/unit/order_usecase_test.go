package unit

import (
	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks（注文向け：衝突回避の命名）
// =====================

type OrdOrderRepoMock struct{ mock.Mock }

func (m *OrdOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrdOrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrdOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrdOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrdOrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrdOrderRepoMock) SetPaymentRef(ctx context.Context, orderID int64, paymentRef string) error {
	args := m.Called(ctx, orderID, paymentRef)
	return args.Error(0)
}

func (m *OrdOrderRepoMock) FindByPaymentRef(ctx context.Context, paymentRef string) (model.Order, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdOrderRepoMock) MarkPaid(ctx context.Context, orderID int64, paymentID string) (bool, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdOrderRepoMock) ListStaleOnlineUnpaid(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	panic("not used in OrderUsecase tests")
}

type OrdProductRepoMock struct{ mock.Mock }

func (m *OrdProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *OrdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrdProductRepoMock) SoftDelete(ctx context.Context, productID int64) error {
	panic("not used in OrderUsecase tests")
}

type OrdAddressRepoMock struct{ mock.Mock }

func (m *OrdAddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdAddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdAddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *OrdAddressRepoMock) Update(ctx context.Context, address model.Address) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrdAddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrdAddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrdAddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	panic("not used in OrderUsecase tests")
}

type OrdInventoryRepoMock struct{ mock.Mock }

func (m *OrdInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrdInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *OrdInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *OrdInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used in OrderUsecase tests")
}

// =====================
// Gateway mock
// =====================

type OrdGatewayMock struct{ mock.Mock }

func (m *OrdGatewayMock) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (payment.Intent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	intent, _ := args.Get(0).(payment.Intent)
	return intent, args.Error(1)
}

func (m *OrdGatewayMock) VerifyWebhook(payload []byte, sigHeader string) (payment.Event, error) {
	panic("not used in OrderUsecase tests")
}

// =====================
// Fixture
// =====================

type ordFixture struct {
	tx        *AdminTxManagerMock
	orders    *OrdOrderRepoMock
	products  *OrdProductRepoMock
	addresses *OrdAddressRepoMock
	inventory *OrdInventoryRepoMock
	gateway   *OrdGatewayMock
	uc        *usecase.OrderUsecase
}

func newOrderFixture() *ordFixture {
	f := &ordFixture{
		orders:    new(OrdOrderRepoMock),
		products:  new(OrdProductRepoMock),
		addresses: new(OrdAddressRepoMock),
		inventory: new(OrdInventoryRepoMock),
		gateway:   new(OrdGatewayMock),
	}
	f.tx = &AdminTxManagerMock{Repos: &AdminTxReposMock{
		orders:    f.orders,
		products:  f.products,
		addresses: f.addresses,
		inventory: f.inventory,
	}}
	f.uc = usecase.NewOrderUsecase(f.tx, f.orders, f.gateway, "inr")
	return f
}

var testProduct = model.Product{
	ID:                 7,
	Brand:              "Apple",
	Model:              "iPhone 13",
	Price:              45000,
	DiscountPercentage: 10,
	Stock:              3,
	Condition:          model.ProductConditionUsed,
	IsActive:           true,
}

var testAddress = model.Address{
	ID:         3,
	UserID:     1,
	Name:       "山田太郎",
	Phone:      "09012345678",
	PostalCode: "100-0001",
	Line1:      "1-1-1",
	City:       "Chiyoda",
}

// =====================
// PlaceOrder: validation
// =====================

func TestOrderUsecase_PlaceOrder_InvalidPaymentMethod(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "CRYPTO",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "invalid payment method")
}

func TestOrderUsecase_PlaceOrder_IdempotencyKeyRequired(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:     7,
		AddressID:     3,
		PaymentMethod: "COD",
	})
	assertErrContains(t, err, "idempotency key required")
}

func TestOrderUsecase_PlaceOrder_QuantityTooLarge(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		Quantity:       11,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "quantity too large")
}

// =====================
// PlaceOrder: idempotency
// =====================

// 同じキーの再送は既存の注文をそのまま返す（Txは開始されない）
func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{
		ID:         55,
		UserID:     1,
		Status:     model.OrderStatusPlaced,
		TotalPrice: 40500,
	}, true, nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Tx内の作成が一意制約に当たったら（同時に同じキーが入った）、
// 勝った方の注文をそのまま返す。500にはしない
func TestOrderUsecase_PlaceOrder_CreateConflictReturnsWinner(t *testing.T) {
	f := newOrderFixture()

	winner := model.Order{
		ID:         99,
		UserID:     1,
		Status:     model.OrderStatusPlaced,
		TotalPrice: 40500,
	}

	//Tx前・Tx内のキー確認はどちらも空振り
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil).Twice()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(testAddress, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(1)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).
		Return(int64(0), errors.New(`duplicate key value violates unique constraint "idx_orders_idempotency_key"`))

	//Tx失敗後の再検索では勝者が見つかる
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(winner, true, nil).Once()

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(99), out.ID)
	assert.Equal(t, int64(40500), out.TotalPrice)

	//在庫はTxのロールバックで戻るので手動の戻しは走らない
	f.inventory.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertExpectations(t)
}

// =====================
// PlaceOrder: COD成功
// =====================

func TestOrderUsecase_PlaceOrder_CODSuccess(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(testAddress, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(2)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// 注文時点の値がスナップショットされている
		return o.UserID == 1 &&
			o.BrandSnapshot == "Apple" &&
			o.ModelSnapshot == "iPhone 13" &&
			o.UnitPriceSnapshot == 40500 &&
			o.TotalPrice == 81000 &&
			o.ShipName == "山田太郎" &&
			o.ShipCity == "Chiyoda" &&
			o.Status == model.OrderStatusPlaced &&
			o.IdempotencyKey == "key-1"
	})).Return(int64(55), nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		Quantity:       2,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)
	assert.Equal(t, int64(81000), out.TotalPrice)
	assert.Equal(t, "", out.ClientSecret)

	// CODなので決済ゲートウェイは呼ばれない
	f.gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	f.orders.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
}

// =====================
// PlaceOrder: ONLINE決済
// =====================

func TestOrderUsecase_PlaceOrder_OnlineReturnsClientSecret(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(testAddress, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(1)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(55), nil)

	f.gateway.On("CreateIntent", mock.Anything, int64(40500), "inr", map[string]string{
		"order_id": "55",
	}).Return(payment.Intent{Ref: "pi_123", ClientSecret: "pi_123_secret"}, nil)
	f.orders.On("SetPaymentRef", mock.Anything, int64(55), "pi_123").Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "ONLINE",
		IdempotencyKey: "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "pi_123_secret", out.ClientSecret)
	assert.Equal(t, "PLACED", out.Status)

	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

// 決済が作れなければ注文は不成立にして在庫を戻す
func TestOrderUsecase_PlaceOrder_IntentFailureRollsBack(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(testAddress, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(1)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(55), nil)

	f.gateway.On("CreateIntent", mock.Anything, int64(40500), "inr", mock.Anything).
		Return(payment.Intent{}, errors.New("gateway down"))

	// ロールバック：PLACEDのままなのでCANCELLED + 在庫戻し
	f.orders.On("FindByID", mock.Anything, int64(55)).Return(model.Order{
		ID:        55,
		ProductID: 7,
		Quantity:  1,
		Status:    model.OrderStatusPlaced,
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(55), model.OrderStatusCancelled).Return(nil)
	f.inventory.On("IncreaseStock", mock.Anything, int64(7), int64(1)).Return(nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "ONLINE",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "payment init failed")

	f.inventory.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

// =====================
// PlaceOrder: 在庫・住所
// =====================

func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(testAddress, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(7), int64(1)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "out of stock")

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 他人の住所では注文できない
func TestOrderUsecase_PlaceOrder_ForeignAddressRejected(t *testing.T) {
	f := newOrderFixture()

	other := testAddress
	other.UserID = 2

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(testProduct, nil)
	f.addresses.On("FindByID", mock.Anything, int64(3)).Return(other, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "invalid address")

	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_InactiveProductRejected(t *testing.T) {
	f := newOrderFixture()

	inactive := testProduct
	inactive.IsActive = false

	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(7)).Return(inactive, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		ProductID:      7,
		AddressID:      3,
		PaymentMethod:  "COD",
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "product not found")
}

// =====================
// GetMyOrderDetail
// =====================

func TestOrderUsecase_GetMyOrderDetail_ForeignOrderHidden(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(55)).Return(model.Order{
		ID:     55,
		UserID: 2,
	}, nil)

	_, err := f.uc.GetMyOrderDetail(context.Background(), 1, 55)
	assertErrContains(t, err, "not found")
}

// =====================
// 最後の1台の取り合い（同時リクエスト）
// =====================

// 在庫1に対して同時に注文して、成功はちょうど1件になること。
// 条件付き減算をインメモリで再現したfakeで確認する
type ordFakeStore struct {
	mu     sync.Mutex
	stock  int64
	nextID int64
	orders map[string]model.Order
}

type ordFakeOrders struct{ s *ordFakeStore }

func (f *ordFakeOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextID++
	order.ID = f.s.nextID
	f.s.orders[order.IdempotencyKey] = order
	return order.ID, nil
}

func (f *ordFakeOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[key]
	return o, ok, nil
}

func (f *ordFakeOrders) SetPaymentRef(ctx context.Context, orderID int64, paymentRef string) error {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) FindByPaymentRef(ctx context.Context, paymentRef string) (model.Order, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) MarkPaid(ctx context.Context, orderID int64, paymentID string) (bool, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) ListAdmin(ctx context.Context, fl repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeOrders) ListStaleOnlineUnpaid(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	panic("not used in concurrency test")
}

type ordFakeInventory struct{ s *ordFakeStore }

func (f *ordFakeInventory) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in concurrency test")
}

// DBの条件付きUPDATEと同じく、足りるときだけ減らす
func (f *ordFakeInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.stock < qty {
		return false, nil
	}
	f.s.stock -= qty
	return true, nil
}

func (f *ordFakeInventory) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.stock += qty
	return nil
}

func (f *ordFakeInventory) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used in concurrency test")
}

type ordFakeProducts struct{}

func (f *ordFakeProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeProducts) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	return testProduct, nil
}

func (f *ordFakeProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeProducts) Update(ctx context.Context, p model.Product) error {
	panic("not used in concurrency test")
}

func (f *ordFakeProducts) SoftDelete(ctx context.Context, productID int64) error {
	panic("not used in concurrency test")
}

type ordFakeAddresses struct{}

func (f *ordFakeAddresses) Create(ctx context.Context, address model.Address) (model.Address, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeAddresses) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeAddresses) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	return testAddress, nil
}

func (f *ordFakeAddresses) Update(ctx context.Context, address model.Address) error {
	panic("not used in concurrency test")
}

func (f *ordFakeAddresses) Delete(ctx context.Context, addressID int64) error {
	panic("not used in concurrency test")
}

func (f *ordFakeAddresses) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	panic("not used in concurrency test")
}

func (f *ordFakeAddresses) SetDefault(ctx context.Context, userID, addressID int64) error {
	panic("not used in concurrency test")
}

type ordFakeTxManager struct{ repos repo.TxRepos }

func (m *ordFakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

func TestOrderUsecase_PlaceOrder_LastUnitRace(t *testing.T) {
	store := &ordFakeStore{stock: 1, orders: map[string]model.Order{}}
	orders := &ordFakeOrders{s: store}

	tx := &ordFakeTxManager{repos: &AdminTxReposMock{
		orders:    orders,
		products:  &ordFakeProducts{},
		addresses: &ordFakeAddresses{},
		inventory: &ordFakeInventory{s: store},
	}}
	uc := usecase.NewOrderUsecase(tx, orders, new(OrdGatewayMock), "inr")

	const workers = 8
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
				ProductID:      7,
				Quantity:       1,
				AddressID:      3,
				PaymentMethod:  "COD",
				IdempotencyKey: fmt.Sprintf("race-key-%d", n),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assertErrContains(t, err, "out of stock")
		}
	}

	// 売れるのは最後の1台だけ
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), store.stock)
	assert.Len(t, store.orders, 1)
}
