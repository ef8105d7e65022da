package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase request. Pending is the only
// initial state; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision reports whether s is a valid terminal decision for a transition.
func (s Status) Decision() bool {
	return s == StatusApproved || s == StatusRejected
}

// ImageList stores an ordered list of image URLs as a jsonb column.
// A nil list persists as SQL NULL (enrichment absent), while an empty
// list persists as '[]' (enrichment succeeded but returned no images).
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for ImageList", value)
	}
}

// PurchaseRequest represents an employee's request to buy a marketplace
// listing. The item_* columns are populated only by the enrichment step at
// creation time, never by the caller. Once the status leaves pending the
// row is never mutated again.
type PurchaseRequest struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee        *User            `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	ListingURL      string           `gorm:"type:text;not null" json:"listing_url"`
	ProductID       string           `gorm:"type:varchar(64);not null" json:"product_id"`
	ItemName        *string          `gorm:"type:text" json:"item_name"`
	ItemDescription *string          `gorm:"type:text" json:"item_description"`
	ItemPrice       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"item_price"`
	ItemImages      ImageList        `gorm:"type:jsonb" json:"item_images"`
	Status          Status           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApproverID      *uuid.UUID       `gorm:"type:uuid" json:"approver_id"`
	Approver        *User            `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}
