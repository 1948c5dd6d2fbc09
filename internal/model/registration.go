package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus 報名狀態類型
type RegistrationStatus string

const (
	RegistrationStatusPending    RegistrationStatus = "PENDING"
	RegistrationStatusApproved   RegistrationStatus = "APPROVED"
	RegistrationStatusRejected   RegistrationStatus = "REJECTED"
	RegistrationStatusWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// IsValid 驗證狀態是否有效
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected,
		RegistrationStatusWaitlisted, RegistrationStatusCancelled:
		return true
	}
	return false
}

// Registration 報名模型。免費活動沒有訂單，OrderID 為空；
// 一旦掛上訂單，取消就要先過退款政策的關卡。
type Registration struct {
	ID             int                `json:"id" db:"id"`
	RegistrationID uuid.UUID          `json:"registration_id" db:"registration_id"`
	EventID        int                `json:"event_id" db:"event_id"`
	UserID         int                `json:"user_id" db:"user_id"`
	OrderID        *int               `json:"order_id,omitempty" db:"order_id"`
	Status         RegistrationStatus `json:"status" db:"status"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// HasOrder 檢查報名是否已掛訂單
func (r *Registration) HasOrder() bool {
	return r.OrderID != nil
}

// CreateRegistrationRequest 創建報名請求
type CreateRegistrationRequest struct {
	EventID int `json:"event_id" binding:"required"`
	UserID  int `json:"user_id" binding:"required"`
}
