package checkoutControllers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storelane/storefront-api/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Inventory{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.BillingAddress{}, &models.ShippingAddress{},
		&models.PaymentAttempt{}, &models.SiteSettings{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Email: id + "@example.com", Name: "Test User"}).Error)
	require.NoError(t, db.Create(&models.BillingAddress{
		UserID:        id,
		AddressFields: models.AddressFields{FullName: "Test User", Email: id + "@example.com", Address1: "1 Main St", City: "Pune", State: "MH", Zipcode: "411001", Country: "IN", Phone: "9999999999"},
	}).Error)
	require.NoError(t, db.Create(&models.ShippingAddress{
		UserID:        id,
		AddressFields: models.AddressFields{FullName: "Test User", Email: id + "@example.com", Address1: "2 Side St", City: "Pune", State: "MH", Zipcode: "411002", Country: "IN", Phone: "8888888888"},
	}).Error)
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Published: true,
		Inventory: models.Inventory{StockQuantity: stock},
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedCartLine(t *testing.T, db *gorm.DB, userID string, p models.Product, qty int) models.Cart {
	t.Helper()
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{UserID: userID, Total: decimal.Zero}
		require.NoError(t, db.Create(&cart).Error)
	} else {
		require.NoError(t, err)
	}
	line := models.CartItem{
		CartID:      cart.CartID,
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    qty,
		LineTotal:   p.Price.Mul(decimal.NewFromInt(int64(qty))),
		AddedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&line).Error)

	var items []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.CartID).Find(&items).Error)
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	require.NoError(t, db.Model(&cart).Update("total", total).Error)
	cart.Total = total
	return cart
}

func seedAttempt(t *testing.T, db *gorm.DB, userID, gatewayOrderID string, paise int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.PaymentAttempt{
		UserID:         userID,
		GatewayOrderID: gatewayOrderID,
		AmountPaise:    paise,
		Currency:       "INR",
		State:          models.AttemptCreated,
	}).Error)
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var inv models.Inventory
	require.NoError(t, db.Where("product_id = ?", productID).First(&inv).Error)
	return inv.StockQuantity
}

func orderCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestPlaceOrderCommits(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	mug := seedProduct(t, db, "Mug", 50, 3)
	seedCartLine(t, db, "u1", shirt, 2)
	cart := seedCartLine(t, db, "u1", mug, 1)
	require.True(t, cart.Total.Equal(decimal.NewFromInt(250)))
	require.NoError(t, db.Create(&models.SiteSettings{ShippingCharge: decimal.NewFromInt(20)}).Error)
	seedAttempt(t, db, "u1", "order_abc", 27000)

	order, replayed, err := PlaceOrder(db, PlaceOrderInput{
		UserID:         "u1",
		GatewayOrderID: "order_abc",
		PaymentID:      "pay_1",
		PaymentMethod:  "card",
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotZero(t, order.ID)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(270)))
	assert.True(t, order.ShippingCharge.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "Test User", order.Billing.FullName)
	assert.Len(t, order.Items, 2)

	// Prices frozen on the order items
	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("product_id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, items[0].Quantity)

	// Inventory decremented
	assert.Equal(t, 3, stockOf(t, db, shirt.ID))
	assert.Equal(t, 2, stockOf(t, db, mug.ID))

	// Cart cleared
	var lineCount int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&lineCount)
	assert.Zero(t, lineCount)
	var fresh models.Cart
	require.NoError(t, db.First(&fresh, "cart_id = ?", cart.CartID).Error)
	assert.True(t, fresh.Total.IsZero())

	// Attempt captured
	var attempt models.PaymentAttempt
	require.NoError(t, db.First(&attempt, "gateway_order_id = ?", "order_abc").Error)
	assert.Equal(t, models.AttemptCaptured, attempt.State)
	assert.Equal(t, "pay_1", attempt.PaymentID)
}

func TestPlaceOrderRollsBackMidTransaction(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	cart := seedCartLine(t, db, "u1", shirt, 2)
	seedAttempt(t, db, "u1", "order_abc", 20000)

	forced := errors.New("forced failure")
	testHookAfterOrderCreate = func(tx *gorm.DB) error { return forced }
	defer func() { testHookAfterOrderCreate = nil }()

	_, _, err := PlaceOrder(db, PlaceOrderInput{
		UserID: "u1", GatewayOrderID: "order_abc", PaymentID: "pay_1", PaymentMethod: "card",
	})
	require.ErrorIs(t, err, forced)

	// Neither the order, nor its items, nor the decrement survived
	assert.Zero(t, orderCount(t, db))
	var itemCount int64
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Zero(t, itemCount)
	assert.Equal(t, 5, stockOf(t, db, shirt.ID))

	// Cart untouched
	var lineCount int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&lineCount)
	assert.EqualValues(t, 1, lineCount)
	var attempt models.PaymentAttempt
	require.NoError(t, db.First(&attempt, "gateway_order_id = ?", "order_abc").Error)
	assert.Equal(t, models.AttemptCreated, attempt.State)
}

func TestPlaceOrderReplaySingleOrder(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)
	seedAttempt(t, db, "u1", "order_abc", 10000)

	in := PlaceOrderInput{UserID: "u1", GatewayOrderID: "order_abc", PaymentID: "pay_1", PaymentMethod: "card"}

	first, replayed, err := PlaceOrder(db, in)
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := PlaceOrder(db, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)

	assert.EqualValues(t, 1, orderCount(t, db))
	// Decremented exactly once
	assert.Equal(t, 4, stockOf(t, db, shirt.ID))
}

func TestPlaceOrderLastUnitRace(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")
	shirt := seedProduct(t, db, "Shirt", 100, 1)
	seedCartLine(t, db, "u1", shirt, 1)
	seedCartLine(t, db, "u2", shirt, 1)
	seedAttempt(t, db, "u1", "order_a", 10000)
	seedAttempt(t, db, "u2", "order_b", 10000)

	_, _, err := PlaceOrder(db, PlaceOrderInput{UserID: "u1", GatewayOrderID: "order_a", PaymentID: "pay_a", PaymentMethod: "card"})
	require.NoError(t, err)

	_, _, err = PlaceOrder(db, PlaceOrderInput{UserID: "u2", GatewayOrderID: "order_b", PaymentID: "pay_b", PaymentMethod: "card"})
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Shirt", stockErr.ProductName)

	assert.EqualValues(t, 1, orderCount(t, db))
	assert.Equal(t, 0, stockOf(t, db, shirt.ID))

	// The losing cart is preserved for retry
	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", "u2").First(&cart).Error)
	assert.Len(t, cart.Items, 1)
}

func TestPlaceOrderStockRevalidationAbortsAll(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	mug := seedProduct(t, db, "Mug", 50, 5)
	seedCartLine(t, db, "u1", shirt, 2)
	seedCartLine(t, db, "u1", mug, 3)
	seedAttempt(t, db, "u1", "order_abc", 35000)

	// Stock moved after the cart was built
	require.NoError(t, db.Model(&models.Inventory{}).
		Where("product_id = ?", mug.ID).
		Update("stock_quantity", 2).Error)

	_, _, err := PlaceOrder(db, PlaceOrderInput{
		UserID: "u1", GatewayOrderID: "order_abc", PaymentID: "pay_1", PaymentMethod: "card",
	})
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Mug", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// No partial order: nothing written for either line
	assert.Zero(t, orderCount(t, db))
	assert.Equal(t, 5, stockOf(t, db, shirt.ID))
	assert.Equal(t, 2, stockOf(t, db, mug.ID))
}

func TestPlaceOrderAmountMismatch(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)
	// Cart grew after the intent was created for a smaller amount
	seedAttempt(t, db, "u1", "order_abc", 5000)

	_, _, err := PlaceOrder(db, PlaceOrderInput{
		UserID: "u1", GatewayOrderID: "order_abc", PaymentID: "pay_1", PaymentMethod: "card",
	})
	require.ErrorIs(t, err, ErrAmountMismatch)
	assert.Zero(t, orderCount(t, db))
}

func TestPlaceOrderMissingAddress(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Email: "u1@example.com"}).Error)
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)
	seedAttempt(t, db, "u1", "order_abc", 10000)

	_, _, err := PlaceOrder(db, PlaceOrderInput{
		UserID: "u1", GatewayOrderID: "order_abc", PaymentID: "pay_1", PaymentMethod: "card",
	})
	require.ErrorIs(t, err, ErrMissingAddress)
}

func TestPlaceOrderUnknownAttempt(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")

	_, _, err := PlaceOrder(db, PlaceOrderInput{
		UserID: "u1", GatewayOrderID: "order_nope", PaymentID: "pay_1", PaymentMethod: "card",
	})
	require.ErrorIs(t, err, ErrUnknownAttempt)
}
