package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appdotbuilder/purchase-approval-platform/internal/enrichment"
	"github.com/appdotbuilder/purchase-approval-platform/internal/handler"
	"github.com/appdotbuilder/purchase-approval-platform/internal/service"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPurchaseService returns canned results so the tests can exercise the
// HTTP status mapping without a database.
type stubPurchaseService struct {
	createErr error
	updateErr error
	getErr    error
	response  service.PurchaseRequestResponse
}

func (s *stubPurchaseService) CreateRequest(context.Context, service.CreatePurchaseRequestDTO) (service.PurchaseRequestResponse, error) {
	return s.response, s.createErr
}

func (s *stubPurchaseService) GetRequest(context.Context, string) (service.PurchaseRequestResponse, error) {
	return s.response, s.getErr
}

func (s *stubPurchaseService) ListRequests(context.Context, int, int) ([]service.PurchaseRequestResponse, int64, error) {
	return []service.PurchaseRequestResponse{s.response}, 1, nil
}

func (s *stubPurchaseService) ListRequestsByEmployee(context.Context, string, int, int) ([]service.PurchaseRequestResponse, int64, error) {
	return []service.PurchaseRequestResponse{s.response}, 1, nil
}

func (s *stubPurchaseService) UpdateStatus(context.Context, string, service.UpdateStatusDTO) (service.PurchaseRequestResponse, error) {
	return s.response, s.updateErr
}

func (s *stubPurchaseService) EnrichItem(_ context.Context, productID string) (enrichment.Result, error) {
	return enrichment.Fallback(productID), nil
}

func newTestRouter(svc service.PurchaseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewPurchaseHandler(svc).RegisterRoutes(router.Group(""))
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const (
	createBody = `{"employee_id":"6a6e5a41-7a45-4b3f-9101-000000000001","listing_url":"https://marketplace.test/itm/1","product_id":"B08N5WRWNW"}`
	decideBody = `{"status":"approved","approver_id":"6a6e5a41-7a45-4b3f-9101-000000000002"}`
)

func TestCreateRequest_Returns201(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{
		response: service.PurchaseRequestResponse{ID: "abc", Status: "pending"},
	})

	w := perform(router, http.MethodPost, "/api/purchase-requests", createBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope["status"])
}

func TestCreateRequest_BadPayloadReturns400(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{})

	w := perform(router, http.MethodPost, "/api/purchase-requests", `{"listing_url": 1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRequest_ValidationErrorReturns400(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{
		createErr: apperrors.Validation("listing_url", "malformed URL"),
	})

	w := perform(router, http.MethodPost, "/api/purchase-requests", createBody)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus_NotFoundReturns404(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{
		updateErr: &apperrors.NotFoundError{Entity: "purchase request", ID: "9999"},
	})

	w := perform(router, http.MethodPatch, "/api/purchase-requests/9999/status", decideBody)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatus_ConflictReturns409(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{
		updateErr: &apperrors.ConflictError{Entity: "purchase request", ID: "abc", Reason: "already decided"},
	})

	w := perform(router, http.MethodPatch, "/api/purchase-requests/abc/status", decideBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "error", envelope["status"])
}

func TestUpdateStatus_RejectsBadDecisionAtBinding(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{})

	w := perform(router, http.MethodPatch, "/api/purchase-requests/abc/status",
		`{"status":"cancelled","approver_id":"6a6e5a41-7a45-4b3f-9101-000000000002"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrichItem_Returns200WithFallback(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{})

	w := perform(router, http.MethodGet, "/api/enrichment/B08N5WRWNW", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "B08N5WRWNW")
}

func TestListRequests_Returns200(t *testing.T) {
	router := newTestRouter(&stubPurchaseService{
		response: service.PurchaseRequestResponse{ID: "abc", Status: "pending"},
	})

	w := perform(router, http.MethodGet, "/api/purchase-requests?page=1&limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
