package repository

import (
	"context"
	"errors"
	"time"

	"github.com/appdotbuilder/purchase-approval-platform/internal/model"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseRequestRepository defines the interface for data access of
// PurchaseRequest entities. Decide is the single conditional write: it only
// succeeds while the stored row is still pending.
type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	List(ctx context.Context, page, limit int) ([]model.PurchaseRequest, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, page, limit int) ([]model.PurchaseRequest, int64, error)
	Decide(ctx context.Context, id uuid.UUID, decision model.Status, approverID uuid.UUID, decidedAt time.Time) (bool, error)
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *purchaseRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "purchase request", ID: id.String()}
		}
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).Preload("Employee").Preload("Approver").First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "purchase request", ID: id.String()}
		}
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) List(ctx context.Context, page, limit int) ([]model.PurchaseRequest, int64, error) {
	return r.list(ctx, nil, page, limit)
}

func (r *purchaseRequestRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, page, limit int) ([]model.PurchaseRequest, int64, error) {
	return r.list(ctx, &employeeID, page, limit)
}

func (r *purchaseRequestRepository) list(ctx context.Context, employeeID *uuid.UUID, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseRequest{})
	if employeeID != nil {
		query = query.Where("employee_id = ?", *employeeID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Employee").Preload("Approver")
	if employeeID != nil {
		fetchQuery = fetchQuery.Where("employee_id = ?", *employeeID)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Decide atomically moves a pending request to its terminal state. The WHERE
// clause re-checks status so two concurrent decisions cannot both succeed:
// the loser matches zero rows and gets ok=false.
func (r *purchaseRequestRepository) Decide(ctx context.Context, id uuid.UUID, decision model.Status, approverID uuid.UUID, decidedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      decision,
			"approver_id": approverID,
			"approved_at": decidedAt,
			"updated_at":  decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
