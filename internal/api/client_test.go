package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"milkdesk/internal/config"
	"milkdesk/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Config{
		APIBaseURL: server.URL,
		APIToken:   "test-token",
		Timeout:    5 * time.Second,
	}
	return NewClient(cfg, zap.NewNop(), metrics.New())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestClient_ListSuppliers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/suppliers", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		writeJSON(w, http.StatusOK, []Supplier{
			{ID: 2, FirstName: "Milan", LastName: "Jovic", City: "Sjenica", OrderIndex: 1},
			{ID: 1, FirstName: "Ana", LastName: "Peric", City: "Komarani", OrderIndex: 0},
		})
	})

	suppliers, err := client.ListSuppliers(context.Background())
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	assert.Equal(t, "Milan Jovic", suppliers[0].FullName())
	assert.Equal(t, 1, suppliers[0].OrderIndex)
}

func TestClient_ListDailyEntries_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/daily-entries", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		assert.Equal(t, "2", r.URL.Query().Get("month"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":7,"supplierId":1,"date":"2025-02-03","qty":10,"fatPct":3.9},
			{"id":8,"supplierId":1,"date":"2025-02-04","qty":11}]`)
	})

	entries, err := client.ListDailyEntries(context.Background(), 2025, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].FatPct)
	assert.InDelta(t, 3.9, *entries[0].FatPct, 1e-9)
	assert.Nil(t, entries[1].FatPct)
	assert.Equal(t, 4, entries[1].Day())
}

func TestClient_ListDailyEntries_InvalidMonth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.ListDailyEntries(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestClient_BulkUpsertEntries(t *testing.T) {
	var got []EntryUpsert
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/daily-entries/bulk-upsert", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	upserts := []EntryUpsert{{Date: "2025-02-03", Qty: 12, SupplierID: 1}}
	require.NoError(t, client.BulkUpsertEntries(context.Background(), upserts))
	assert.Equal(t, upserts, got)
}

func TestClient_BulkUpsertEntries_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	assert.NoError(t, client.BulkUpsertEntries(context.Background(), nil))
}

func TestClient_UpsertEntry_SendsNullID(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/daily-entries/upsert", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpsertEntry(context.Background(), QualityUpsert{Date: "2025-02-01", SupplierID: 3, FatPct: 3.8})
	require.NoError(t, err)
	assert.Contains(t, raw, "id")
	assert.Nil(t, raw["id"])
	assert.Equal(t, 3.8, raw["fatPct"])
}

func TestClient_DeleteEntry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/daily-entries/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteEntry(context.Background(), 42))
	assert.ErrorIs(t, client.DeleteEntry(context.Background(), 0), ErrMissingID)
}

func TestClient_CreateSupplier_DoesNotSendID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, "Sjenica", body["city"])

		writeJSON(w, http.StatusCreated, Supplier{ID: 99, FirstName: "Ana", LastName: "Peric", City: "Sjenica"})
	})

	created, err := client.CreateSupplier(context.Background(), Supplier{ID: 5, FirstName: "Ana", LastName: "Peric", City: "Sjenica"})
	require.NoError(t, err)
	assert.Equal(t, int64(99), created.ID)
}

func TestClient_UpdateSupplier(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/suppliers/5", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	updated, err := client.UpdateSupplier(context.Background(), Supplier{ID: 5, FirstName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.FirstName)

	_, err = client.UpdateSupplier(context.Background(), Supplier{FirstName: "Ana"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestClient_ReorderSuppliers(t *testing.T) {
	var got []SupplierOrder
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/suppliers/reorder", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	order := []SupplierOrder{{ID: 2, OrderIndex: 0}, {ID: 1, OrderIndex: 1}}
	require.NoError(t, client.ReorderSuppliers(context.Background(), order))
	assert.Equal(t, order, got)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.ListSuppliers(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("server error keeps body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "database down")
		})
		err := client.BulkUpsertEntries(context.Background(), []EntryUpsert{{Date: "2025-02-03", Qty: 1, SupplierID: 1}})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "database down", apiErr.Body)
	})
}

func TestClient_MonthlySummaries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/summaries/monthly", r.URL.Path)
		assert.Equal(t, "all", q.Get("period"))
		assert.Equal(t, "Sjenica", q.Get("city"))
		writeJSON(w, http.StatusOK, []MonthlySummary{{SupplierID: 1, SerialNum: 1, Qty: 120.5, TotalAmount: 9000}})
	})

	rows, err := client.MonthlySummaries(context.Background(), MonthlyQuery{Year: 2025, Month: 2, City: "Sjenica"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 120.5, rows[0].Qty)
}

func TestClient_MonthlySummaries_OmitsEmptyCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasCity := r.URL.Query()["city"]
		assert.False(t, hasCity)
		assert.Equal(t, "first", r.URL.Query().Get("period"))
		writeJSON(w, http.StatusOK, []MonthlySummary{})
	})

	_, err := client.MonthlySummaries(context.Background(), MonthlyQuery{Year: 2025, Month: 2, Period: "first"})
	require.NoError(t, err)
}

func TestClient_ExportBlobs(t *testing.T) {
	blob := []byte("PK\x03\x04fake-xlsx")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/summaries/monthly/export", "/api/summaries/monthly/receipts", "/api/summaries/quarterly/export":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			_, _ = w.Write(blob)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	got, err := client.ExportMonthly(ctx, MonthlyQuery{Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	got, err = client.MonthlyReceipts(ctx, MonthlyQuery{Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	got, err = client.ExportQuarterly(ctx, QuarterlyQuery{Year: 2025, Quarter: 1})
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	_, err = client.ExportQuarterly(ctx, QuarterlyQuery{Year: 2025, Quarter: 5})
	assert.ErrorIs(t, err, ErrInvalidQuarter)
}

func TestClient_QuarterlySummaries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("quarter"))
		writeJSON(w, http.StatusOK, []QuarterlySummary{{SupplierID: 1, Qty: 300, Cows: 4, PremiumPerL: 19, TotalPremium: 5700}})
	})

	rows, err := client.QuarterlySummaries(context.Background(), QuarterlyQuery{Year: 2025, Quarter: 3})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Cows)
}
