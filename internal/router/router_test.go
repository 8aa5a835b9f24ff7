package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"example.com/storefront/internal/auth"
	"example.com/storefront/internal/checkout"
	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
)

type fakeBlacklist struct {
	revoked map[string]bool
}

func (f *fakeBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]bool)
	}
	f.revoked[token] = true
	return nil
}

func (f *fakeBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return f.revoked[token], nil
}

// stubEngine lets each test script the checkout engine's behavior.
type stubEngine struct {
	placeOrder func() (*models.Order, error)
	cancel     func() (*models.Order, error)
	update     func() (*models.Order, error)
}

func (s *stubEngine) PlaceOrder(ctx context.Context, userID bson.ObjectID, email string, in checkout.PlaceOrderInput) (*models.Order, error) {
	return s.placeOrder()
}

func (s *stubEngine) CancelOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	return s.cancel()
}

func (s *stubEngine) UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status string) (*models.Order, error) {
	return s.update()
}

func (s *stubEngine) ListUserOrders(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (s *stubEngine) GetUserOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error) {
	return nil, checkout.ErrOrderNotFound
}

func (s *stubEngine) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return []models.Order{}, nil
}

type fakeMailer struct{}

func (fakeMailer) Welcome(user *models.User) error            { return nil }
func (fakeMailer) PasswordReset(email, resetURL string) error { return nil }

func newTestServer(t *testing.T, engine CheckoutEngine) (*gin.Engine, *auth.Service, *fakeBlacklist) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := auth.NewService("router-test-secret")
	blacklist := &fakeBlacklist{}
	_, router := New(Deps{
		Blacklist: blacklist,
		Auth:      authService,
		Mailer:    fakeMailer{},
		Checkout:  engine,
	})
	return router, authService, blacklist
}

func issueToken(t *testing.T, authService *auth.Service, role string) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{
		ID:    bson.NewObjectID(),
		Email: "jo@example.com",
		Role:  role,
	})
	assert.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router, _, _ := newTestServer(t, &stubEngine{})

	rec := doRequest(router, http.MethodGet, "/api/orders/", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	router, _, _ := newTestServer(t, &stubEngine{})

	rec := doRequest(router, http.MethodGet, "/api/orders/", "not-a-jwt", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	router, authService, blacklist := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleCustomer)
	assert.NoError(t, blacklist.Add(context.Background(), token, time.Hour))

	rec := doRequest(router, http.MethodGet, "/api/orders/", token, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp global.APIResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Token has been revoked", resp.Message)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	router, authService, _ := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleCustomer)

	rec := doRequest(router, http.MethodGet, "/api/orders/", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminMiddlewareRejectsCustomers(t *testing.T) {
	router, authService, _ := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleCustomer)

	rec := doRequest(router, http.MethodGet, "/api/admin/orders", token, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminMiddlewareAllowsAdmins(t *testing.T) {
	router, authService, _ := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleAdmin)

	rec := doRequest(router, http.MethodGet, "/api/admin/orders", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"insufficient stock", &checkout.InsufficientStockError{Product: "Widget"}, http.StatusBadRequest},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &stubEngine{placeOrder: func() (*models.Order, error) { return nil, tc.err }}
			router, authService, _ := newTestServer(t, engine)
			token := issueToken(t, authService, models.RoleCustomer)

			rec := doRequest(router, http.MethodPost, "/api/orders/", token, `{"shipping_address":"123 Main St"}`)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	order := &models.Order{ID: bson.NewObjectID(), Status: models.OrderStatusPending, TotalAmount: 25}
	engine := &stubEngine{placeOrder: func() (*models.Order, error) { return order, nil }}
	router, authService, _ := newTestServer(t, engine)
	token := issueToken(t, authService, models.RoleCustomer)

	rec := doRequest(router, http.MethodPost, "/api/orders/", token, `{"shipping_address":"123 Main St"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp global.APIResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestPlaceOrderRequiresShippingAddress(t *testing.T) {
	router, authService, _ := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleCustomer)

	rec := doRequest(router, http.MethodPost, "/api/orders/", token, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", checkout.ErrOrderNotFound, http.StatusNotFound},
		{"not cancellable", checkout.ErrInvalidTransition, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &stubEngine{cancel: func() (*models.Order, error) { return nil, tc.err }}
			router, authService, _ := newTestServer(t, engine)
			token := issueToken(t, authService, models.RoleCustomer)

			rec := doRequest(router, http.MethodPut, "/api/orders/"+bson.NewObjectID().Hex()+"/cancel", token, "")

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestUpdateOrderStatusRejectsInvalidStatus(t *testing.T) {
	engine := &stubEngine{update: func() (*models.Order, error) { return nil, checkout.ErrInvalidStatus }}
	router, authService, _ := newTestServer(t, engine)
	token := issueToken(t, authService, models.RoleAdmin)

	rec := doRequest(router, http.MethodPut, "/api/admin/orders/"+bson.NewObjectID().Hex()+"/status", token, `{"status":"teleported"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	router, authService, blacklist := newTestServer(t, &stubEngine{})
	token := issueToken(t, authService, models.RoleCustomer)

	rec := doRequest(router, http.MethodPost, "/api/auth/logout", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, blacklist.revoked[token])

	rec = doRequest(router, http.MethodGet, "/api/orders/", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
