package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/dto"
)

func batchTable() *domain.Table {
	table := domain.NewTable([]string{"price", "item_id", "week"})
	table.Append(domain.Row{"price": "10", "item_id": "sku-1", "week": "23"})
	return table
}

func predictOK(t *testing.T, w http.ResponseWriter) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(dto.PredictResponse{
		Status:      "success",
		Columns:     []string{"price", "item_id", "week", "predicted_sales_quantity"},
		Data:        []map[string]string{{"price": "10", "item_id": "sku-1", "week": "23", "predicted_sales_quantity": "20"}},
		RecordCount: 1,
	})
	require.NoError(t, err)
}

func TestClientPredict(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v1/predict", r.URL.Path)
		assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "price,item_id,week\n10,sku-1,23\n", string(body))
		predictOK(t, w)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 3, time.Millisecond)

	resp, err := client.Predict(context.Background(), batchTable())

	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, resp.RecordCount)
	assert.Equal(t, "20", resp.Data[0]["predicted_sales_quantity"])
}

func TestClientPredict_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		predictOK(t, w)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 3, time.Millisecond)

	resp, err := client.Predict(context.Background(), batchTable())

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "success", resp.Status)
}

func TestClientPredict_GivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 2, time.Millisecond)

	_, err := client.Predict(context.Background(), batchTable())

	assert.ErrorIs(t, err, domain.ErrUpstreamDown)
	assert.Equal(t, int32(3), hits.Load(), "first call plus two retries")
}

func TestClientPredict_NoRetryOnValidationError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
			Status:         "error",
			Message:        "missing required columns: item_id, week",
			MissingColumns: []string{"item_id", "week"},
		})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 3, time.Millisecond)

	_, err := client.Predict(context.Background(), batchTable())

	assert.Equal(t, int32(1), hits.Load(), "a 400 will answer the same way every time")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "missing required columns: item_id, week", apiErr.Message)
	assert.Equal(t, []string{"item_id", "week"}, apiErr.MissingColumns)
	assert.NotErrorIs(t, err, domain.ErrUpstreamDown)
}

func TestClientPredict_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, 1, time.Millisecond)

	_, err := client.Predict(context.Background(), batchTable())

	assert.ErrorIs(t, err, domain.ErrUpstreamDown)
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(dto.HealthResponse{Status: "error", Message: "model bundle is not loaded"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 0, time.Millisecond)

	health, err := client.Health(context.Background())

	require.NoError(t, err, "a degraded API still answers the probe")
	assert.Equal(t, "error", health.Status)
}

func TestClientHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second, 0, time.Millisecond)

	_, err := client.Health(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstreamDown)
}

func TestClientModelInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/model-info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.ModelInfoResponse{Status: "success", Name: "merch-sales", Version: "2025.06"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, 0, time.Millisecond)

	info, err := client.ModelInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "merch-sales", info.Name)
	assert.Equal(t, "2025.06", info.Version)
}
