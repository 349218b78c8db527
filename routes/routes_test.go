package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/feed"
	"github.com/junaidrashid-git/storefront/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret     = "test-secret"
	testAPIKey     = "admin-key"
	testAdminToken = "admin-tok"
)

// backend fakes the REST API the BFF talks to.
type backend struct {
	mu        sync.Mutex
	token     string
	puts      []string
	cleared   int
	expireOn  map[string]bool
	orders    map[string]map[string]any // by order number
	cancels   []string
	statuses  []string
	addresses int
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			ok := r.Header.Get("Authorization") == "Bearer "+b.token && !b.expireOn[r.URL.Path]
			b.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "p1", "name": "Linen Shirt", "price": "29.99",
			"variants": []map[string]any{{"id": "V1", "sku": "LS-M", "size": "M", "price": "29.99", "stock": 10}},
		})
	})
	mux.HandleFunc("GET /identities/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "ana@example.com"})
	}))
	mux.HandleFunc("GET /cart", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "srv-cart", "items": []any{}})
	}))
	mux.HandleFunc("PUT /cart/items/{variant}", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.puts = append(b.puts, r.PathValue("variant"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("DELETE /cart", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.cleared++
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /orders", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": "o1", "orderNumber": "ORD-2024-100", "status": "pending", "totalAmount": "59.98",
		})
	}))
	mux.HandleFunc("GET /orders", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "total": 0, "page": 1, "limit": 10, "totalPages": 0})
	}))
	mux.HandleFunc("GET /orders/number/{n}", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		order, ok := b.orders[r.PathValue("n")]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
			return
		}
		writeJSON(w, http.StatusOK, order)
	}))
	mux.HandleFunc("POST /orders/{id}/cancel", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.cancels = append(b.cancels, r.PathValue("id"))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "status": "cancelled"})
	}))
	mux.HandleFunc("PATCH /orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAdminToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.statuses = append(b.statuses, req.Status)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"id": r.PathValue("id"), "orderNumber": "ORD-2024-055", "status": req.Status, "totalAmount": "40.00",
			"items": []map[string]any{{"variantId": "V1", "quantity": 2}, {"variantId": "V2", "quantity": 1}},
		})
	})
	mux.HandleFunc("POST /address", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.addresses++
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"id": "a1"})
	}))
	return mux
}

type env struct {
	router  *gin.Engine
	backend *backend
	sim     *feed.Simulator
	store   *storage.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	be := &backend{token: "backend-tok", expireOn: map[string]bool{}, orders: map[string]map[string]any{}}
	srv := httptest.NewServer(be.handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	client := api.New(api.Config{BaseURL: srv.URL})
	carts := cart.NewManager(store, nil)
	sim := feed.NewSimulator(feed.DefaultConfig())
	hub := feed.NewHub(nil)
	t.Cleanup(hub.Close)

	r := gin.New()
	SetupRoutes(r, Deps{
		API:         client,
		Sessions:    &auth.Sessions{API: client, Store: store, Carts: carts, Log: zap.NewNop()},
		Carts:       carts,
		Simulator:   sim,
		Hub:         hub,
		JWTSecret:   testSecret,
		GuestTTL:    time.Hour,
		SessionTTL:  time.Hour,
		AdminAPIKey: testAPIKey,
	})
	return &env{router: r, backend: be, sim: sim, store: store}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// admin sends an admin request carrying the API key and the admin's backend
// token.
func (e *env) admin(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", testAPIKey)
	req.Header.Set("X-Backend-Token", testAdminToken)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// login walks a guest through adding to the cart and signing in.
func (e *env) login(t *testing.T) string {
	t.Helper()
	w, guest := e.do(t, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	guestToken := guest["token"].(string)

	w, cartBody := e.do(t, http.MethodPost, "/guest/cart", guestToken,
		map[string]any{"product_id": "p1", "variant_id": "V1", "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "59.98", cartBody["subtotal"])

	w, login := e.do(t, http.MethodPost, "/auth/login", "",
		map[string]any{"token": "backend-tok", "guest_id": guest["guest_id"]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, cart.MergeSuccess, login["merge_status"])
	return login["token"].(string)
}

func TestGuestLoginMergeAndPlaceOrder(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)
	assert.Equal(t, []string{"V1"}, e.backend.puts)

	w, body := e.do(t, http.MethodGet, "/user/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "authenticated", body["mode"])
	assert.Equal(t, float64(2), body["total_items"])

	w, body = e.do(t, http.MethodPost, "/user/orders/place", token,
		map[string]any{"address_id": "a1", "payment_method": "cod"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, body["cart_cleared"])
	assert.Equal(t, 1, e.backend.cleared)

	orders := e.sim.Recent(feed.CategoryOrders)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-2024-100", orders[0].Payload.(feed.OrderEvent).OrderNumber)

	w, body = e.do(t, http.MethodPost, "/user/orders/place", token,
		map[string]any{"address_id": "a1", "payment_method": "cod"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", body["error"])
}

func TestOrderNotFound(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	w, body := e.do(t, http.MethodGet, "/user/orders/ORD-2024-001", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "order not found", body["error"])
}

func TestBackendExpiryEndsSession(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	e.backend.mu.Lock()
	e.backend.expireOn["/orders"] = true
	e.backend.mu.Unlock()

	w, body := e.do(t, http.MethodGet, "/user/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, api.LoginRedirect, body["redirect"])

	// The stored backend token is gone, so every user route now redirects.
	w, body = e.do(t, http.MethodGet, "/user/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "session expired", body["error"])
}

func TestGuestTokenCannotReachUserRoutes(t *testing.T) {
	e := newEnv(t)
	_, guest := e.do(t, http.MethodPost, "/auth/guest", "", nil)

	w, _ := e.do(t, http.MethodGet, "/user/cart", guest["token"].(string), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = e.do(t, http.MethodGet, "/guest/cart?guest_id=guest_someone-else", guest["token"].(string), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGuestCartUnknownProduct(t *testing.T) {
	e := newEnv(t)
	_, guest := e.do(t, http.MethodPost, "/auth/guest", "", nil)

	w, body := e.do(t, http.MethodPost, "/guest/cart", guest["token"].(string),
		map[string]any{"product_id": "nope", "variant_id": "V1", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product does not exist", body["error"])
}

func TestAdminFeedRequiresAPIKey(t *testing.T) {
	e := newEnv(t)
	e.sim.Publish(feed.CategoryOrders, feed.OrderEvent{OrderNumber: "ORD-2024-007", Items: 1})

	w, _ := e.do(t, http.MethodGet, "/admin/feed/snapshot", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/feed/snapshot", nil)
	req.Header.Set("X-API-KEY", testAPIKey)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORD-2024-007")
	assert.Contains(t, rec.Body.String(), `"state":"disconnected"`)
}

func TestCancelOrderOnlyBeforeShipping(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	e.backend.mu.Lock()
	for number, status := range map[string]string{
		"ORD-P": "pending", "ORD-S": "shipped", "ORD-D": "delivered", "ORD-C": "cancelled",
	} {
		e.backend.orders[number] = map[string]any{"id": "id-" + number, "orderNumber": number, "status": status}
	}
	e.backend.mu.Unlock()

	tests := []struct {
		number string
		want   int
	}{
		{"ORD-S", http.StatusConflict},
		{"ORD-D", http.StatusConflict},
		{"ORD-C", http.StatusConflict},
		{"ORD-P", http.StatusOK},
		{"ORD-X", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.number, func(t *testing.T) {
			w, body := e.do(t, http.MethodPost, "/user/orders/"+tc.number+"/cancel", token, nil)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			if tc.want == http.StatusConflict {
				assert.Equal(t, "order can no longer be cancelled", body["error"])
			}
		})
	}

	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	assert.Equal(t, []string{"id-ORD-P"}, e.backend.cancels)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	e := newEnv(t)

	w, body := e.admin(t, http.MethodPut, "/admin/orders/o55/status", map[string]any{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "shipped", body["status"])

	orders := e.sim.Recent(feed.CategoryOrders)
	require.Len(t, orders, 1)
	ev := orders[0].Payload.(feed.OrderEvent)
	assert.Equal(t, "ORD-2024-055", ev.OrderNumber)
	assert.Equal(t, "shipped", ev.Status)
	assert.Equal(t, 3, ev.Items)

	unread := e.sim.Unread()
	require.Len(t, unread, 1)
	assert.Equal(t, "Order updated", unread[0].Title)

	w, body = e.admin(t, http.MethodPut, "/admin/orders/o55/status", map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid order status", body["error"])

	w, _ = e.admin(t, http.MethodPut, "/admin/orders/o55/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.backend.mu.Lock()
	assert.Equal(t, []string{"shipped"}, e.backend.statuses)
	e.backend.mu.Unlock()
	assert.Len(t, e.sim.Recent(feed.CategoryOrders), 1)
}

func TestCreateAddressValidatesBeforeCallingBackend(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	w, body := e.do(t, http.MethodPost, "/user/addresses", token, map[string]any{"fullName": "Ana"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", body["error"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, w.Body.String())
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "street")
	assert.NotContains(t, fields, "fullName")

	e.backend.mu.Lock()
	assert.Zero(t, e.backend.addresses)
	e.backend.mu.Unlock()

	w, _ = e.do(t, http.MethodPost, "/user/addresses", token, map[string]any{
		"fullName": "Ana", "phone": "555", "street": "1 Main", "city": "Doha", "postalCode": "1000", "country": "QA",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e.backend.mu.Lock()
	assert.Equal(t, 1, e.backend.addresses)
	e.backend.mu.Unlock()
}

func TestLogoutEndsSession(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	w, _ := e.do(t, http.MethodGet, "/user/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := e.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out", body["message"])

	_, found, err := e.store.Get(context.Background(), "user:u1:"+storage.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, found)

	w, body = e.do(t, http.MethodGet, "/user/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "session expired", body["error"])
}
