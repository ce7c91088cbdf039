package checkoutControllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/gateway/razorpay"
	"github.com/storelane/storefront-api/models"
)

const testSecret = "testsecret"

// fakeGateway stands in for the payment service: order creation returns a
// fixed id, payment fetch returns a card payment.
func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fmt.Fprintf(w, `{"id":"order_test123","amount":%v,"currency":"INR","status":"created"}`, req["amount"])
	})
	mux.HandleFunc("/v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/payments/")
		fmt.Fprintf(w, `{"id":"%s","method":"card","status":"captured"}`, id)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, baseURL string) *razorpay.Client {
	t.Helper()
	gw, err := razorpay.New(razorpay.Config{KeyID: "rzp_test_key", KeySecret: testSecret, BaseURL: baseURL})
	require.NoError(t, err)
	return gw
}

func testRouter(db *gorm.DB, gw *razorpay.Client, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.POST("/checkout", Checkout(db, gw))
	r.POST("/checkout/callback", Callback(db, gw, nil))
	return r
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutQuotesGatewayAmount(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	mug := seedProduct(t, db, "Mug", 50, 3)
	seedCartLine(t, db, "u1", shirt, 2)
	seedCartLine(t, db, "u1", mug, 1)
	require.NoError(t, db.Create(&models.SiteSettings{ShippingCharge: decimal.NewFromInt(20)}).Error)

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout", gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		GatewayOrderID string `json:"gateway_order_id"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 250 cart + 20 shipping = 270.00 → 27000 minor units
	assert.EqualValues(t, 27000, resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "order_test123", resp.GatewayOrderID)

	var attempt models.PaymentAttempt
	require.NoError(t, db.First(&attempt, "gateway_order_id = ?", "order_test123").Error)
	assert.EqualValues(t, 27000, attempt.AmountPaise)
	assert.Equal(t, models.AttemptCreated, attempt.State)
}

func TestCheckoutBlocksWithoutAddresses(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Email: "u1@example.com"}).Error)
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No intent was created
	var attempts int64
	db.Model(&models.PaymentAttempt{}).Count(&attempts)
	assert.Zero(t, attempts)
}

func TestCheckoutBlocksEmptyCart(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallbackPlacesOrder(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)
	seedAttempt(t, db, "u1", "order_test123", 10000)

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout/callback", gin.H{
		"gateway_order_id": "order_test123",
		"payment_id":       "pay_1",
		"signature":        sign("order_test123", "pay_1"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.First(&order, "payment_id = ?", "pay_1").Error)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, "order_test123", order.GatewayOrderID)
	assert.Equal(t, 4, stockOf(t, db, shirt.ID))
}

func TestCallbackTamperedSignature(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	cart := seedCartLine(t, db, "u1", shirt, 1)
	seedAttempt(t, db, "u1", "order_test123", 10000)

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout/callback", gin.H{
		"gateway_order_id": "order_test123",
		"payment_id":       "pay_1",
		"signature":        "deadbeef",
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	// Cart untouched, no order created, stock unchanged
	assert.Zero(t, orderCount(t, db))
	var lineCount int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&lineCount)
	assert.EqualValues(t, 1, lineCount)
	assert.Equal(t, 5, stockOf(t, db, shirt.ID))

	var attempt models.PaymentAttempt
	require.NoError(t, db.First(&attempt, "gateway_order_id = ?", "order_test123").Error)
	assert.Equal(t, models.AttemptFailed, attempt.State)
}

func TestCallbackMissingFields(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	w := postJSON(r, "/checkout/callback", gin.H{"gateway_order_id": "order_test123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "canceled")
}

func TestCallbackReplayedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "u1")
	shirt := seedProduct(t, db, "Shirt", 100, 5)
	seedCartLine(t, db, "u1", shirt, 1)
	seedAttempt(t, db, "u1", "order_test123", 10000)

	srv := fakeGateway(t)
	r := testRouter(db, testClient(t, srv.URL), "u1")

	body := gin.H{
		"gateway_order_id": "order_test123",
		"payment_id":       "pay_1",
		"signature":        sign("order_test123", "pay_1"),
	}
	w := postJSON(r, "/checkout/callback", body)
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(r, "/checkout/callback", body)
	require.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, 1, orderCount(t, db))
	assert.Equal(t, 4, stockOf(t, db, shirt.ID))
}
