package orders

import "github.com/ariefcatur/erp-lite/internal/apperr"

var (
	ErrOrderNotFound   = apperr.New(apperr.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrProductNotFound = apperr.New(apperr.KindNotFound, "PRODUCT_NOT_FOUND", "product not found")

	ErrInsufficientStock = apperr.New(apperr.KindValidation, "INSUFFICIENT_STOCK", "not enough stock available")
	ErrInvalidStatus     = apperr.New(apperr.KindValidation, "INVALID_STATUS", "invalid order status")

	ErrDuplicateOrderNumber  = apperr.Conflict("DUPLICATE_ORDER_NUMBER", "duplicate order number, please retry")
	ErrOrderNumbersExhausted = apperr.Conflict("ORDER_NUMBERS_EXHAUSTED", "daily order number range exhausted, please retry tomorrow")
)
