package apperrors

import "errors"

var (
	// 驗證類錯誤
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrUnsupportedQuantity = errors.New("no price tier matches the requested quantity")

	// 庫存 / 狀態類錯誤
	ErrCapacityExceeded    = errors.New("ticket type capacity exceeded")
	ErrTicketTypeInactive  = errors.New("ticket type is not open for sale")
	ErrOrderStatusConflict = errors.New("order status does not allow this transition")

	// 退款政策類錯誤
	ErrPolicyViolation = errors.New("refund policy violation")
	ErrRefundRequired  = errors.New("order must be refunded before cancellation")

	// 查無資料
	ErrTicketTypeNotFound   = errors.New("ticket type not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternalServerError = errors.New("internal server error")
)
