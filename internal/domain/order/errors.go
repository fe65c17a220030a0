package order

import "errors"

var (
	ErrNotFound         = errors.New("order not found")
	ErrAlreadyExists    = errors.New("order already exists")
	ErrNothingToInvoice = errors.New("order has nothing left to invoice")
	ErrInvalidOrder     = errors.New("invalid order")
)
