package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/batch"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/cache"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/orderapi"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/patterns"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOrders struct {
	orders map[string]*models.Order
	down   bool
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	if f.down {
		return nil, fmt.Errorf("circuit breaker OrderAPI is open: %w", patterns.ErrCircuitOpen)
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", orderapi.ErrOrderNotFound, id)
	}
	return order, nil
}

func (f *fakeOrders) GetOrders(ctx context.Context, ids []string) ([]*models.Order, error) {
	var out []*models.Order
	for _, id := range ids {
		order, err := f.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]*invoice.Artifact
	gets  int
}

func (m *memoryCache) Get(_ context.Context, order *models.Order) (*invoice.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if a, ok := m.items[order.ID]; ok {
		return a, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryCache) Set(_ context.Context, order *models.Order, a *invoice.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[order.ID] = a
	return nil
}

type testEnv struct {
	router *gin.Engine
	svc    *InvoiceService
	sink   *storage.MemorySink
	orders *fakeOrders
}

func newTestEnv(t *testing.T, interval time.Duration, invoiceCache cache.Cache) *testEnv {
	t.Helper()

	generator := invoice.NewGenerator()
	sink := storage.NewMemorySink()
	bulkhead := patterns.NewBulkhead(2, time.Second, "render", "test-service")
	dispatcher := batch.NewDispatcher(generator, sink, "test-service",
		batch.WithStagger(patterns.NewStagger(interval, "batch", "test-service")),
		batch.WithBulkhead(bulkhead),
	)
	orders := &fakeOrders{orders: map[string]*models.Order{
		"a1b2c3d4e5f6": sampleOrder("a1b2c3d4e5f6"),
	}}

	svc := newInvoiceService(generator, dispatcher, orders, nil, invoiceCache, bulkhead)
	t.Cleanup(svc.shutdown)

	return &testEnv{
		router: newRouter(svc, "test-service"),
		svc:    svc,
		sink:   sink,
		orders: orders,
	}
}

func sampleOrder(id string) *models.Order {
	return &models.Order{
		ID:        id,
		CreatedAt: time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
		Status:    models.OrderStatusDelivered,
		Quantity:  100,
		Product:   &models.ProductRef{Name: "Areca Leaf Plate"},
		User:      &models.Contact{Name: "Asha Rao", Email: "asha@example.com"},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestRenderInvoice(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodPost, "/invoice/render", sampleOrder("a1b2c3d4e5f6"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="GreenVerse_Invoice_A1B2C3D4.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestRenderInvoice_BadBody(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	req := httptest.NewRequest(http.MethodPost, "/invoice/render", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestPreviewInvoice(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodPost, "/invoice/preview", sampleOrder("a1b2c3d4e5f6"))
	require.Equal(t, http.StatusOK, w.Code)

	var doc invoice.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "GreenVerse_Invoice_A1B2C3D4.pdf", doc.Filename)
	assert.Equal(t, "N/A", doc.Customer.Phone)
	assert.Equal(t, "200", doc.Impact.PlasticKg)
	assert.Equal(t, "0.70", doc.Impact.CO2Tons)
	assert.Equal(t, "3000", doc.Impact.WaterLiters)
	assert.Equal(t, invoice.TableMinTop, doc.Layout.TableTop())
}

func TestDownloadInvoice(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodGet, "/invoice/a1b2c3d4e5f6", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "GreenVerse_Invoice_A1B2C3D4.pdf")
}

func TestDownloadInvoice_OrderAPIErrors(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodGet, "/invoice/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.orders.down = true
	w = env.do(t, http.MethodGet, "/invoice/a1b2c3d4e5f6", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_api_unavailable", resp.Error)
}

func TestDownloadInvoice_ServedFromCache(t *testing.T) {
	mc := &memoryCache{items: map[string]*invoice.Artifact{}}
	env := newTestEnv(t, time.Millisecond, mc)

	first := env.do(t, http.MethodGet, "/invoice/a1b2c3d4e5f6", nil)
	require.Equal(t, http.StatusOK, first.Code)

	cached := &invoice.Artifact{Filename: "cached.pdf", ContentType: "application/pdf", Content: []byte("cached")}
	mc.items["a1b2c3d4e5f6"] = cached

	second := env.do(t, http.MethodGet, "/invoice/a1b2c3d4e5f6", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "cached", second.Body.String())
	assert.Equal(t, 2, mc.gets)
}

func TestGenerateAll_NothingToDo(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodPost, "/invoice/batch", models.BatchInvoiceRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BatchInvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.BatchStatusNothingToDo, resp.Status)
	assert.Zero(t, resp.Scheduled)
	assert.Empty(t, resp.RunID)
}

func TestGenerateAll_Scheduled(t *testing.T) {
	env := newTestEnv(t, 5*time.Millisecond, nil)

	req := models.BatchInvoiceRequest{Orders: []models.Order{
		*sampleOrder("11111111aaaa"),
		*sampleOrder("22222222bbbb"),
		*sampleOrder("33333333cccc"),
	}}
	w := env.do(t, http.MethodPost, "/invoice/batch", req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp models.BatchInvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.BatchStatusScheduled, resp.Status)
	assert.Equal(t, 3, resp.Scheduled)
	assert.Equal(t, int64(5), resp.IntervalMS)
	assert.NotEmpty(t, resp.RunID)

	require.Eventually(t, func() bool { return len(env.sink.Artifacts()) == 3 }, 5*time.Second, 10*time.Millisecond)

	var names []string
	for _, a := range env.sink.Artifacts() {
		names = append(names, a.Filename)
	}
	assert.ElementsMatch(t, []string{
		"GreenVerse_Invoice_11111111.pdf",
		"GreenVerse_Invoice_22222222.pdf",
		"GreenVerse_Invoice_33333333.pdf",
	}, names)
}

func TestGenerateAll_ByIDs(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodPost, "/invoice/batch", models.BatchInvoiceRequest{OrderIDs: []string{"a1b2c3d4e5f6"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool { return len(env.sink.Artifacts()) == 1 }, 5*time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodPost, "/invoice/batch", models.BatchInvoiceRequest{OrderIDs: []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchRun_StatusAndCancel(t *testing.T) {
	env := newTestEnv(t, time.Hour, nil)

	req := models.BatchInvoiceRequest{Orders: []models.Order{
		*sampleOrder("11111111aaaa"),
		*sampleOrder("22222222bbbb"),
	}}
	w := env.do(t, http.MethodPost, "/invoice/batch", req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp models.BatchInvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = env.do(t, http.MethodGet, "/invoice/batch/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	// the first invocation is issued at once, the second waits an hour
	require.Eventually(t, func() bool {
		return bytes.Contains(env.do(t, http.MethodGet, "/invoice/batch/"+resp.RunID, nil).Body.Bytes(), []byte(`"issued":1`))
	}, 5*time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodDelete, "/invoice/batch/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Issued  int `json:"issued"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 1, status.Issued)
	assert.Equal(t, 1, status.Skipped)

	require.Eventually(t, func() bool {
		return env.do(t, http.MethodGet, "/invoice/batch/"+resp.RunID, nil).Code == http.StatusNotFound
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCircuitStatus_NoBreaker(t *testing.T) {
	env := newTestEnv(t, time.Millisecond, nil)

	w := env.do(t, http.MethodGet, "/invoice/circuit-status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}
