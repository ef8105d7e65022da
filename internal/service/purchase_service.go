package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/appdotbuilder/purchase-approval-platform/internal/enrichment"
	"github.com/appdotbuilder/purchase-approval-platform/internal/model"
	"github.com/appdotbuilder/purchase-approval-platform/internal/repository"
	ws "github.com/appdotbuilder/purchase-approval-platform/internal/websocket"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreatePurchaseRequestDTO struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	ListingURL string `json:"listing_url" binding:"required,url"`
	ProductID  string `json:"product_id" binding:"required"`
}

type UpdateStatusDTO struct {
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	ApproverID string `json:"approver_id" binding:"required"`
}

type PurchaseRequestResponse struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	EmployeeName    string           `json:"employee_name,omitempty"`
	ListingURL      string           `json:"listing_url"`
	ProductID       string           `json:"product_id"`
	ItemName        *string          `json:"item_name"`
	ItemDescription *string          `json:"item_description"`
	ItemPrice       *decimal.Decimal `json:"item_price"`
	ItemImages      []string         `json:"item_images"`
	Status          string           `json:"status"`
	ApproverID      *string          `json:"approver_id"`
	ApproverName    string           `json:"approver_name,omitempty"`
	ApprovedAt      *string          `json:"approved_at"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

// --- Interface ---

// PurchaseService orchestrates the purchase request lifecycle: creation with
// best-effort catalog enrichment, listing, and the one-way status transition.
type PurchaseService interface {
	CreateRequest(ctx context.Context, req CreatePurchaseRequestDTO) (PurchaseRequestResponse, error)
	GetRequest(ctx context.Context, id string) (PurchaseRequestResponse, error)
	ListRequests(ctx context.Context, page, limit int) ([]PurchaseRequestResponse, int64, error)
	ListRequestsByEmployee(ctx context.Context, employeeID string, page, limit int) ([]PurchaseRequestResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusDTO) (PurchaseRequestResponse, error)
	EnrichItem(ctx context.Context, productID string) (enrichment.Result, error)
}

type purchaseService struct {
	requestRepo repository.PurchaseRequestRepository
	userRepo    repository.UserRepository
	txManager   repository.TransactionManager
	catalog     enrichment.Client
	hub         *ws.Hub
}

func NewPurchaseService(
	requestRepo repository.PurchaseRequestRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	catalog enrichment.Client,
	hub *ws.Hub,
) PurchaseService {
	return &purchaseService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		catalog:     catalog,
		hub:         hub,
	}
}

// --- Implementation ---

// CreateRequest validates input, enriches the item from the external catalog
// source, and persists a new pending request. Enrichment is strictly best
// effort: a dead or slow catalog yields fallback data, never an error.
func (s *purchaseService) CreateRequest(ctx context.Context, req CreatePurchaseRequestDTO) (PurchaseRequestResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PurchaseRequestResponse{}, apperrors.Validation("employee_id", "must be a valid UUID")
	}

	if err := validateListingURL(req.ListingURL); err != nil {
		return PurchaseRequestResponse{}, err
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return PurchaseRequestResponse{}, apperrors.Validation("product_id", "must not be empty")
	}

	employee, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return PurchaseRequestResponse{}, apperrors.Validation("employee_id", "employee does not exist")
		}
		return PurchaseRequestResponse{}, err
	}
	if employee.Role != model.RoleEmployee {
		return PurchaseRequestResponse{}, apperrors.Validation("employee_id", "user is not an employee")
	}

	// Synchronous, bounded by the client's timeout and breaker. Always
	// returns data (real or fallback), so the write below always proceeds.
	item := s.catalog.Fetch(ctx, productID)

	images := item.Images
	if images == nil {
		images = []string{}
	}
	price := item.Price

	request := &model.PurchaseRequest{
		EmployeeID:      employeeID,
		ListingURL:      req.ListingURL,
		ProductID:       productID,
		ItemName:        &item.Name,
		ItemDescription: &item.Description,
		ItemPrice:       &price,
		ItemImages:      model.ImageList(images),
		Status:          model.StatusPending,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return PurchaseRequestResponse{}, err
	}
	request.Employee = employee

	resp := toPurchaseResponse(request)
	s.publish("purchase_request.created", resp)
	return resp, nil
}

func (s *purchaseService) GetRequest(ctx context.Context, id string) (PurchaseRequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseRequestResponse{}, apperrors.Validation("id", "must be a valid UUID")
	}

	request, err := s.requestRepo.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}
	return toPurchaseResponse(request), nil
}

func (s *purchaseService) ListRequests(ctx context.Context, page, limit int) ([]PurchaseRequestResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toPurchaseResponses(requests), total, nil
}

func (s *purchaseService) ListRequestsByEmployee(ctx context.Context, employeeID string, page, limit int) ([]PurchaseRequestResponse, int64, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, 0, apperrors.Validation("employee_id", "must be a valid UUID")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.ListByEmployee(ctx, id, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toPurchaseResponses(requests), total, nil
}

// UpdateStatus moves a pending request to approved or rejected. The guard on
// the current status runs as a conditional UPDATE inside a transaction, so
// two concurrent decisions on one request cannot both succeed; the loser
// receives a conflict error. Terminal states are never re-transitioned,
// including re-applying the same decision.
func (s *purchaseService) UpdateStatus(ctx context.Context, id string, req UpdateStatusDTO) (PurchaseRequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseRequestResponse{}, apperrors.Validation("id", "must be a valid UUID")
	}

	decision := model.Status(req.Status)
	if !decision.Decision() {
		return PurchaseRequestResponse{}, apperrors.Validation("status", "must be approved or rejected")
	}

	approverID, err := uuid.Parse(req.ApproverID)
	if err != nil {
		return PurchaseRequestResponse{}, apperrors.Validation("approver_id", "must be a valid UUID")
	}

	var decided *model.PurchaseRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approver, err := s.userRepo.GetByID(txCtx, approverID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Validation("approver_id", "approver does not exist")
			}
			return err
		}
		if approver.Role != model.RoleApprover {
			return apperrors.Validation("approver_id", "user is not an approver")
		}

		// Distinguishes NotFound (no row) from Conflict (row exists but is
		// no longer pending, or lost the race below).
		if _, err := s.requestRepo.FindByID(txCtx, requestID); err != nil {
			return err
		}

		now := time.Now().UTC()
		ok, err := s.requestRepo.Decide(txCtx, requestID, decision, approverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return &apperrors.ConflictError{
				Entity: "purchase request",
				ID:     requestID.String(),
				Reason: "already decided",
			}
		}

		decided, err = s.requestRepo.FindByIDWithRelations(txCtx, requestID)
		return err
	})
	if err != nil {
		return PurchaseRequestResponse{}, err
	}

	resp := toPurchaseResponse(decided)
	s.publish("purchase_request.decided", resp)
	return resp, nil
}

// EnrichItem exposes the catalog lookup standalone for diagnostics and
// previews. Same contract as the creation path: fallback data on any failure.
func (s *purchaseService) EnrichItem(ctx context.Context, productID string) (enrichment.Result, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return enrichment.Result{}, apperrors.Validation("product_id", "must not be empty")
	}
	return s.catalog.Fetch(ctx, productID), nil
}

// --- Helpers ---

func validateListingURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.Validation("listing_url", "malformed URL")
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return apperrors.Validation("listing_url", "must be an absolute http(s) URL")
	}
	return nil
}

func (s *purchaseService) publish(event string, data interface{}) {
	if s.hub != nil {
		s.hub.Publish(event, data)
	}
}

func toPurchaseResponse(r *model.PurchaseRequest) PurchaseRequestResponse {
	resp := PurchaseRequestResponse{
		ID:              r.ID.String(),
		EmployeeID:      r.EmployeeID.String(),
		ListingURL:      r.ListingURL,
		ProductID:       r.ProductID,
		ItemName:        r.ItemName,
		ItemDescription: r.ItemDescription,
		ItemPrice:       r.ItemPrice,
		ItemImages:      []string(r.ItemImages),
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}

	if r.Employee != nil {
		resp.EmployeeName = r.Employee.Name
	}
	if r.ApproverID != nil {
		s := r.ApproverID.String()
		resp.ApproverID = &s
	}
	if r.Approver != nil {
		resp.ApproverName = r.Approver.Name
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}

	return resp
}

func toPurchaseResponses(requests []model.PurchaseRequest) []PurchaseRequestResponse {
	result := make([]PurchaseRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toPurchaseResponse(&requests[i]))
	}
	return result
}
