package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishank307/vintzaclient/internal/allocation"
	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/idgen/simple"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/migration"
	"github.com/Ishank307/vintzaclient/internal/planner"
	"github.com/Ishank307/vintzaclient/internal/pricing"
	"github.com/Ishank307/vintzaclient/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	l := logger.Discard()

	db := memory.New(memory.Config{L: l})
	require.NoError(t, migration.Up(ctx, l, db, time.Now(), 30))

	prices := pricing.New(db, pricing.DefaultTaxRate)
	orders := booking.New(l, db, simple.New(), prices)
	plans := planner.New(l, db, orders, prices, planner.Config{TierLimit: allocation.DefaultTierLimit, DefaultGuests: 2})

	srv, err := New(ctx, Conf{
		L:                 l,
		ServerLogger:      log.New(io.Discard, "", 0),
		Host:              "localhost",
		Port:              "0",
		ReadHeaderTimeout: time.Second,
		LivenessEndpoint:  "/liveness",
	}, orders, plans)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, &buf)
	require.NoError(t, err)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeView(t *testing.T, resp *http.Response) planner.View {
	t.Helper()

	var v planner.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format(catalog.DateLayout)
}

func TestLiveness(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/liveness", nil, nil)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/sessions/v1", map[string]any{
		"hotel_id":  migration.DemoHotelID,
		"check_in":  day(1),
		"check_out": day(2),
		"guests":    4,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	v := decodeView(t, resp)
	assert.Equal(t, allocation.Selection{4: 1}, v.Selection)

	resp = do(t, ts, http.MethodPost, "/api/sessions/v1/"+v.ID+"/tiers/2/increment", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.Equal(t, allocation.Selection{2: 1, 4: 1}, v.Selection)
	assert.Equal(t, "user_edited", v.State)

	resp = do(t, ts, http.MethodPost, "/api/sessions/v1/"+v.ID+"/tiers/2/decrement", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.Equal(t, allocation.Selection{4: 1}, v.Selection)

	resp = do(t, ts, http.MethodPut, "/api/sessions/v1/"+v.ID+"/guests", map[string]any{"guests": 2}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.Equal(t, allocation.Selection{2: 1}, v.Selection)
	assert.Equal(t, "optimized", v.State)

	resp = do(t, ts, http.MethodPut, "/api/sessions/v1/"+v.ID+"/dates", map[string]any{"check_in": day(2), "check_out": day(5)}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.Equal(t, 3, v.Nights)
	assert.InDelta(t, 2499*3, v.Totals.TotalCost, 1e-9)

	resp = do(t, ts, http.MethodPost, "/api/sessions/v1/"+v.ID+"/orders", map[string]any{
		"payer": map[string]string{"name": "Asha", "email": "asha@example.com"},
	}, map[string]string{"Idempotency-Key": "order-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order booking.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, []string{"cottage-1"}, order.RoomIDs)
	assert.Equal(t, 3, order.Nights)

	resp = do(t, ts, http.MethodDelete, "/api/sessions/v1/"+v.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/sessions/v1/"+v.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing hotel", body: map[string]any{"guests": 2}, want: http.StatusBadRequest},
		{name: "bad date", body: map[string]any{"hotel_id": migration.DemoHotelID, "check_in": "tomorrow"}, want: http.StatusBadRequest},
		{name: "unknown hotel", body: map[string]any{"hotel_id": "nowhere"}, want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, "/api/sessions/v1", tc.body, nil)

			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestTierCapacityMustBeNumeric(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/sessions/v1/abc/tiers/two/increment", nil, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{
		"hotel_id":  migration.DemoHotelID,
		"room_ids":  []string{"villa-1"},
		"check_in":  day(1),
		"check_out": day(2),
		"guests":    5,
		"payer":     map[string]string{"email": "asha@example.com"},
	}

	resp := do(t, ts, http.MethodPost, "/api/orders/v1", body, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/orders/v1", body, map[string]string{"Idempotency-Key": "a"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/orders/v1", body, map[string]string{"Idempotency-Key": "b"})
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)

	body["guests"] = 9
	resp = do(t, ts, http.MethodPost, "/api/orders/v1", body, map[string]string{"Idempotency-Key": "c"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var fields map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fields))
	assert.Equal(t, []string{"need 3 more guest capacity"}, fields["guests"])
}
