package order

import "context"

//go:generate mockgen -source order_repo.go -destination mock_order_repo.go -package order

type OrderRepo interface {
	TxOrderRepo
	InTransaction(ctx context.Context, fn func(repo TxOrderRepo) error) error
}

type TxOrderRepo interface {
	// GetOrder returns ErrNotFound when no order has the given id.
	GetOrder(ctx context.Context, id string) (Order, error)
	// GetOrderForUpdate is GetOrder with the row locked until the
	// surrounding transaction ends.
	GetOrderForUpdate(ctx context.Context, id string) (Order, error)
	// CreateOrder returns ErrAlreadyExists on a duplicate id.
	CreateOrder(ctx context.Context, o Order) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	CreateInvoice(ctx context.Context, inv Invoice) error
}
