package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency 平台結算預設幣別
const DefaultCurrency = "CNY"

// TicketType 票種模型。CurrentQuantity 為「已售出或保留中」的數量，
// 只能透過 repository 的 Reserve / Release 原子更新，不可在應用層讀改寫。
type TicketType struct {
	ID              int             `json:"id" db:"id"`
	TicketTypeID    uuid.UUID       `json:"ticket_type_id" db:"ticket_type_id"`
	EventID         int             `json:"event_id" db:"event_id"`
	Name            string          `json:"name" db:"name"`
	BasePrice       decimal.Decimal `json:"base_price" db:"base_price"`
	Currency        string          `json:"currency" db:"currency"`
	MaxQuantity     *int            `json:"max_quantity,omitempty" db:"max_quantity"`
	CurrentQuantity int             `json:"current_quantity" db:"current_quantity"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	SortOrder       int             `json:"sort_order" db:"sort_order"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`

	PriceTiers []PriceTier `json:"price_tiers" db:"-"`
}

// PriceTier 套票價格階層：Quantity 是「剛好買這麼多張」的精確鍵，
// Price 是這一整組的總價，不是單價乘數。
type PriceTier struct {
	ID           int             `json:"id" db:"id"`
	TicketTypeID int             `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Currency     string          `json:"currency,omitempty" db:"currency"`
	SortOrder    int             `json:"sort_order" db:"sort_order"`
}

// IsDeleted 檢查票種是否已刪除
func (t *TicketType) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Unlimited 檢查票種是否無上限
func (t *TicketType) Unlimited() bool {
	return t.MaxQuantity == nil
}

// Remaining 剩餘可售數量；無上限時回傳 -1
func (t *TicketType) Remaining() int {
	if t.MaxQuantity == nil {
		return -1
	}
	remaining := *t.MaxQuantity - t.CurrentQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

type UpdateTicketTypeParams struct {
	Name        *string
	BasePrice   *decimal.Decimal
	Currency    *string
	MaxQuantity *int
	IsActive    *bool
	SortOrder   *int
}

// TicketTypeResponse 票種響應，remaining = -1 表示無上限
type TicketTypeResponse struct {
	TicketTypeID uuid.UUID       `json:"ticket_type_id"`
	EventID      int             `json:"event_id"`
	Name         string          `json:"name"`
	BasePrice    decimal.Decimal `json:"base_price"`
	Currency     string          `json:"currency"`
	MaxQuantity  *int            `json:"max_quantity,omitempty"`
	Remaining    int             `json:"remaining"`
	IsActive     bool            `json:"is_active"`
	SortOrder    int             `json:"sort_order"`
	PriceTiers   []PriceTier     `json:"price_tiers"`
}
