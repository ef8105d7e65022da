package handler

import (
	"net/http"

	"github.com/appdotbuilder/purchase-approval-platform/internal/service"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/pagination"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/purchase-requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.PATCH("/:id/status", h.UpdateStatus)
	}
	router.GET("/api/enrichment/:productId", h.EnrichItem)
}

// CreateRequest handles POST /api/purchase-requests
// @Summary      Create a purchase request
// @Description  Creates a pending request and enriches it from the external catalog source (best effort)
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseRequestDTO  true  "Create Purchase Request Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-requests [post]
func (h *PurchaseHandler) CreateRequest(c *gin.Context) {
	var req service.CreatePurchaseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.purchaseService.CreateRequest(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests handles GET /api/purchase-requests, optionally filtered by employee
// @Summary      List purchase requests
// @Description  Retrieves purchase requests newest first, optionally for a single employee
// @Tags         purchase-requests
// @Produce      json
// @Param        employee_id  query     string  false  "Filter by employee UUID"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      400          {object}  response.Response
// @Router       /api/purchase-requests [get]
func (h *PurchaseHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	var (
		requests []service.PurchaseRequestResponse
		total    int64
		err      error
	)
	if employeeID := c.Query("employee_id"); employeeID != "" {
		requests, total, err = h.purchaseService.ListRequestsByEmployee(c.Request.Context(), employeeID, params.Page, params.Limit)
	} else {
		requests, total, err = h.purchaseService.ListRequests(c.Request.Context(), params.Page, params.Limit)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetRequest handles GET /api/purchase-requests/:id
// @Summary      Get a purchase request
// @Tags         purchase-requests
// @Produce      json
// @Param        id   path      string  true  "Purchase Request ID"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-requests/{id} [get]
func (h *PurchaseHandler) GetRequest(c *gin.Context) {
	result, err := h.purchaseService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateStatus handles PATCH /api/purchase-requests/:id/status
// @Summary      Decide a purchase request
// @Description  Moves a pending request to approved or rejected. Terminal states cannot be re-decided.
// @Tags         purchase-requests
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Purchase Request ID"
// @Param        payload  body      service.UpdateStatusDTO  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.PurchaseRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-requests/{id}/status [patch]
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.purchaseService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// EnrichItem handles GET /api/enrichment/:productId
// @Summary      Preview catalog enrichment for a product identifier
// @Description  Returns catalog metadata or deterministic fallback data; never fails on catalog errors
// @Tags         enrichment
// @Produce      json
// @Param        productId  path      string  true  "External product identifier"
// @Success      200        {object}  response.Response{data=enrichment.Result}
// @Failure      400        {object}  response.Response
// @Router       /api/enrichment/{productId} [get]
func (h *PurchaseHandler) EnrichItem(c *gin.Context) {
	result, err := h.purchaseService.EnrichItem(c.Request.Context(), c.Param("productId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
