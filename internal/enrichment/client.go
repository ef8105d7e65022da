// Package enrichment fetches item metadata for a product identifier from an
// external catalog source. Lookups are best effort: the client never returns
// an error, only real data or deterministic fallback data, so a dead catalog
// source can never block purchase request creation.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// MinProductIDLength is the minimum length of a valid external product
// identifier. Anything shorter cannot resolve remotely, so the client skips
// the network round trip entirely.
const MinProductIDLength = 10

// Result is the catalog metadata for a single item. Images is always
// non-nil; a successful lookup with no pictures yields an empty list.
type Result struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

// Client looks up catalog metadata. Implementations must not return errors;
// any failure is converted into fallback data internally.
type Client interface {
	Fetch(ctx context.Context, productID string) Result
}

type catalogClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewCatalogClient builds a Client against the catalog HTTP API at baseURL.
// Every lookup is bounded by timeout and guarded by a circuit breaker; an
// open breaker is treated exactly like a failed fetch.
func NewCatalogClient(baseURL string, timeout time.Duration) Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "catalog",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &catalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (c *catalogClient) Fetch(ctx context.Context, productID string) Result {
	if len(strings.TrimSpace(productID)) < MinProductIDLength {
		return Fallback(productID)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.lookup(ctx, productID)
	})
	if err != nil {
		log.Printf("enrichment: catalog lookup failed for %q: %v", productID, err)
		return Fallback(productID)
	}
	return out.(Result)
}

// lookup performs a single GET against the catalog source. No retries.
func (c *catalogClient) lookup(ctx context.Context, productID string) (Result, error) {
	endpoint := c.baseURL + "/products/" + url.PathEscape(productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return Result{}, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var payload Result
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("malformed catalog response: %w", err)
	}

	if payload.Name == "" {
		return Result{}, fmt.Errorf("catalog returned empty item name")
	}
	if payload.Price.IsNegative() {
		return Result{}, fmt.Errorf("catalog returned negative price %s", payload.Price)
	}
	if payload.Images == nil {
		payload.Images = []string{}
	}

	return payload, nil
}

// Fallback is the deterministic placeholder returned when the catalog source
// is unreachable, slow, or the identifier is too short to be valid. The name
// embeds the literal product identifier so failed enrichments stay traceable.
func Fallback(productID string) Result {
	return Result{
		Name:        fmt.Sprintf("Product %s", productID),
		Description: "Item details are unavailable; the catalog source could not be reached.",
		Price:       decimal.Zero,
		Images:      []string{},
	}
}
