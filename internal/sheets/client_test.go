package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ReadTable(t *testing.T) {
	var gotPath, gotSheet, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSheet = r.URL.Query().Get("sheet")
		gotFormat = r.URL.Query().Get("tqx")
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("date,index,return_pct_ytd\n2025-03-31,sp500,0.042\n"))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("abc123", srv.URL, 0)
	records, err := client.ReadTable(context.Background(), "indexes")
	require.NoError(t, err)

	assert.Equal(t, "/abc123/gviz/tq", gotPath)
	assert.Equal(t, "indexes", gotSheet)
	assert.Equal(t, "out:csv", gotFormat)
	require.Len(t, records, 1)
	assert.Equal(t, "sp500", records[0]["index"])
}

func TestClient_ReadTable_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("abc123", srv.URL, 0)
	_, err := client.ReadTable(context.Background(), "portfolios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_ReadTable_HTMLLoginPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("private", srv.URL, 0)
	_, err := client.ReadTable(context.Background(), "portfolios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared")
}

func TestClient_ReadTable_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClientWithBaseURL("abc123", srv.URL, 0)
	_, err := client.ReadTable(ctx, "portfolios")
	require.Error(t, err)
}

func TestClient_RateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("date\n2025-01-31\n"))
	}))
	defer srv.Close()

	// Burst of 3, then one token every 10s: the fourth call cannot complete before the deadline.
	client := NewClientWithBaseURL("abc123", srv.URL, 0.1)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	for i := 0; i < 3; i++ {
		_, err := client.ReadTable(ctx, "portfolios")
		require.NoError(t, err)
	}
	_, err := client.ReadTable(ctx, "portfolios")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
