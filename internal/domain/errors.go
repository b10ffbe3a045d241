package domain

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrTransactionFailure = errors.New("transaction failure")
	ErrDeliveryFailure    = errors.New("delivery failure")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
)

// ErrorCode returns the taxonomy name of err, or "INTERNAL" when err does not
// wrap one of the sentinels above.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrTransactionFailure):
		return "TRANSACTION_FAILURE"
	case errors.Is(err, ErrDeliveryFailure):
		return "DELIVERY_ERROR"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	}
	return "INTERNAL"
}
