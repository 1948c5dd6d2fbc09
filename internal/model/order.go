package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusPaid          OrderStatus = "PAID"
	OrderStatusRefundPending OrderStatus = "REFUND_PENDING"
	OrderStatusRefunded      OrderStatus = "REFUNDED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusExpired       OrderStatus = "EXPIRED"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusRefundPending,
		OrderStatusRefunded, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// orderTransitions 訂單狀態機。不在表內的轉換一律拒絕，不會靜默忽略。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:       {OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPaid:          {OrderStatusRefundPending},
	OrderStatusRefundPending: {OrderStatusRefunded},
	OrderStatusRefunded:      {},
	OrderStatusCancelled:     {},
	OrderStatusExpired:       {},
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	allowed, ok := orderTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// IsTerminal 終止狀態不再轉換
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusRefunded, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// ReleasesCapacity 從 PENDING 進入此狀態時是否歸還庫存。
// CANCELLED 與 EXPIRED 視為同樣歸還；PAID 之後的取消不歸還（已是成交）。
func (s OrderStatus) ReleasesCapacity() bool {
	return s == OrderStatusCancelled || s == OrderStatusExpired
}

// Order 訂單模型。UnitPrice / TotalAmount / Currency 在建單時定價一次，之後不變；
// 退款金額永遠等於 TotalAmount。終止後保留作帳務稽核，不會刪除。
type Order struct {
	ID             int                 `json:"id" db:"id"`
	OrderID        uuid.UUID           `json:"order_id" db:"order_id"`
	RegistrationID int                 `json:"registration_id" db:"registration_id"`
	TicketTypeID   int                 `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity       int                 `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price" db:"unit_price"`
	TotalAmount    decimal.Decimal     `json:"total_amount" db:"total_amount"`
	Currency       string              `json:"currency" db:"currency"`
	Status         OrderStatus         `json:"status" db:"status"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
	ExpiresAt      time.Time           `json:"expires_at" db:"expires_at"`
	PaidAt         *time.Time          `json:"paid_at,omitempty" db:"paid_at"`
	RefundedAt     *time.Time          `json:"refunded_at,omitempty" db:"refunded_at"`
	RefundAmount   decimal.NullDecimal `json:"refund_amount,omitempty" db:"refund_amount"`
}

// IsExpired 檢查待付款訂單的付款窗口是否已過
func (o *Order) IsExpired(now time.Time) bool {
	return o.Status == OrderStatusPending && now.After(o.ExpiresAt)
}

// CreateOrderRequest 創建訂單請求
type CreateOrderRequest struct {
	RegistrationID uuid.UUID `json:"registration_id" binding:"required"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
}

// RefundRequest 發起退款請求；RequestedAmount 可省略，帶了就必須等於訂單總額
type RefundRequest struct {
	RequestedAmount *decimal.Decimal `json:"requested_amount"`
}
