package prepplan

import "errors"

// Domain errors for prep plan operations

var (
	ErrInvalidDateRange        = errors.New("plan end date must not be before start date")
	ErrInvalidStatusTransition = errors.New("invalid prep plan status transition")
	ErrPlanNotFound            = errors.New("prep plan not found")
	ErrEmptyIngredientName     = errors.New("ingredient name is required")
	ErrNegativeQuantity        = errors.New("ingredient quantity cannot be negative")
)
