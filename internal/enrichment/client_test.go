package enrichment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/appdotbuilder/purchase-approval-platform/internal/enrichment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProductID = "B08N5WRWNW"

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (enrichment.Client, *int64) {
	t.Helper()
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return enrichment.NewCatalogClient(server.URL, timeout), &hits
}

func TestFetch_ParsesCatalogResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/"+validProductID, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Wireless Headphones",
			"description": "Noise cancelling",
			"price": 99.99,
			"images": ["https://img.test/1.jpg", "https://img.test/2.jpg"]
		}`))
	}, time.Second)

	result := client.Fetch(context.Background(), validProductID)

	assert.Equal(t, "Wireless Headphones", result.Name)
	assert.Equal(t, "Noise cancelling", result.Description)
	assert.True(t, result.Price.Equal(decimal.RequireFromString("99.99")), "got %s", result.Price)
	assert.Len(t, result.Images, 2)
}

func TestFetch_ShortIdentifierSkipsRemoteCall(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, time.Second)

	for _, id := range []string{"", "ABC", "B08N5WRW"} {
		result := client.Fetch(context.Background(), id)
		assert.Contains(t, result.Name, id)
		assert.True(t, result.Price.IsZero())
	}

	assert.EqualValues(t, 0, atomic.LoadInt64(hits), "identifiers below the minimum length never reach the catalog")
}

func TestFetch_RemoteErrorFallsBack(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Second)

	result := client.Fetch(context.Background(), validProductID)

	assert.Contains(t, result.Name, validProductID)
	assert.True(t, result.Price.IsZero())
	require.NotNil(t, result.Images)
	assert.Empty(t, result.Images)
}

func TestFetch_MalformedBodyFallsBack(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": `))
	}, time.Second)

	result := client.Fetch(context.Background(), validProductID)
	assert.Contains(t, result.Name, validProductID)
}

func TestFetch_NegativePriceFallsBack(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Bad Item", "description": "", "price": -1, "images": []}`))
	}, time.Second)

	result := client.Fetch(context.Background(), validProductID)
	assert.NotEqual(t, "Bad Item", result.Name)
	assert.True(t, result.Price.IsZero())
}

func TestFetch_SlowCatalogTimesOutToFallback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"name": "Too Late", "price": 1}`))
	}, 20*time.Millisecond)

	start := time.Now()
	result := client.Fetch(context.Background(), validProductID)

	assert.Less(t, time.Since(start), 150*time.Millisecond, "fetch must be bounded by the client timeout")
	assert.Contains(t, result.Name, validProductID)
}

func TestFetch_MissingImagesBecomesEmptyList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Imageless", "description": "d", "price": 5}`))
	}, time.Second)

	result := client.Fetch(context.Background(), validProductID)

	assert.Equal(t, "Imageless", result.Name)
	require.NotNil(t, result.Images)
	assert.Empty(t, result.Images)
}

func TestFallback_IsDeterministicAndTraceable(t *testing.T) {
	result := enrichment.Fallback(validProductID)

	assert.Contains(t, result.Name, validProductID)
	assert.NotEmpty(t, result.Description)
	assert.True(t, result.Price.IsZero())
	require.NotNil(t, result.Images)
	assert.Empty(t, result.Images)

	assert.Equal(t, result, enrichment.Fallback(validProductID))
}
