package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PreOrderStatus is the lifecycle state of a pre-order line
type PreOrderStatus string

const (
	PreOrderPending   PreOrderStatus = "pending"
	PreOrderConfirmed PreOrderStatus = "confirmed"
	PreOrderReady     PreOrderStatus = "ready"
	PreOrderCollected PreOrderStatus = "collected"
	PreOrderCancelled PreOrderStatus = "cancelled"
)

// PreOrder is one cart line of a customer's pre-order. A user holds at most
// one row per menu item.
type PreOrder struct {
	UUID       string         `json:"uuid" gorm:"primaryKey;size:36"`
	UserID     uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_pre_orders_user_item"`
	User       *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MenuItemID string         `json:"menu_item_id" gorm:"size:36;uniqueIndex:idx_pre_orders_user_item"`
	MenuItem   *MenuItem      `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID;references:UUID;constraint:OnDelete:CASCADE"`
	Quantity   int            `json:"quantity" gorm:"not null;default:1"`
	Status     PreOrderStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (p *PreOrder) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PreOrderPending
	}
	return nil
}

// All returns every model that needs a table, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AccessToken{},
		&MenuItem{},
		&PreOrder{},
	}
}
