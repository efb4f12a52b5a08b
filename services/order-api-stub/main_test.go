package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/orderapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStub_ServesOrdersToClient(t *testing.T) {
	srv := httptest.NewServer(newRouter(newOrderStore(sampleOrders()...)))
	defer srv.Close()

	client := orderapi.NewClient(srv.URL+"/api", "test-service")
	orders, err := client.GetOrders(context.Background(), []string{"a1b2c3d4e5f60718", "f0e1d2c3b4a59687"})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// both sample shapes render
	for _, order := range orders {
		artifact, err := invoice.NewGenerator().Generate(order)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(artifact.Filename, "GreenVerse_Invoice_"))
	}

	_, err = client.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, orderapi.ErrOrderNotFound)
}

func TestStub_PutOrder(t *testing.T) {
	router := newRouter(newOrderStore())

	body := `{"id":"ignored","amount":"12.50","quantity":1,"status":"pending"}`
	req := httptest.NewRequest(http.MethodPut, "/api/orders/new-order-1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/new-order-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"new-order-1"`)
	assert.Contains(t, w.Body.String(), `"status":"Pending"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.JSONEq(t, `{"order_ids":["new-order-1"]}`, w.Body.String())
}

func TestStub_SlowModeTripsClientTimeout(t *testing.T) {
	store := newOrderStore(sampleOrders()...)
	store.slowDelay = func() time.Duration { return 200 * time.Millisecond }
	store.setSlowMode(true)

	srv := httptest.NewServer(newRouter(store))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := orderapi.NewClient(srv.URL+"/api", "test-service").GetOrder(ctx, "a1b2c3d4e5f60718")
	assert.Error(t, err)
}

func TestStub_ChaosToggles(t *testing.T) {
	store := newOrderStore()
	router := newRouter(store)

	for _, tc := range []struct {
		path      string
		wantChaos bool
		wantSlow  bool
	}{
		{"/chaos/enable", true, false},
		{"/chaos/slow", true, true},
		{"/chaos/slow/disable", true, false},
		{"/chaos/disable", false, false},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, nil))
		require.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, tc.wantChaos, store.getChaosEnabled(), tc.path)
		assert.Equal(t, tc.wantSlow, store.getSlowMode(), tc.path)
	}
}
