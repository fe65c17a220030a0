package order_repo

import (
	"context"
	"errors"
	"fmt"

	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id", "status", "payment_method", "currency_code", "grand_total",
	"customer_email", "created_at", "updated_at",
}

// PgOrderRepo is the main repository
type PgOrderRepo struct {
	pg *postgres.Postgres
	repo
}

func NewPgOrderRepo(pg *postgres.Postgres) order.OrderRepo {
	return &PgOrderRepo{
		pg:   pg,
		repo: repo{db: pg.Pool, builder: pg.Builder},
	}
}

func (r *PgOrderRepo) InTransaction(ctx context.Context, fn func(repo order.TxOrderRepo) error) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		return fn(&repo{db: tx, builder: r.pg.Builder})
	})
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func (r *repo) GetOrder(ctx context.Context, id string) (order.Order, error) {
	return r.getOrder(ctx, id, false)
}

func (r *repo) GetOrderForUpdate(ctx context.Context, id string) (order.Order, error) {
	return r.getOrder(ctx, id, true)
}

func (r *repo) getOrder(ctx context.Context, id string, lock bool) (order.Order, error) {
	q := r.builder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("build select order query: %w", err)
	}

	row, err := parseOrderRow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	return row.toDomain(items)
}

func (r *repo) getItems(ctx context.Context, orderID string) ([]order.Item, error) {
	query, args, err := r.builder.Select("id", "sku", "name", "price", "quantity", "qty_invoiced").
		From("order_items").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	return parseItemRows(rows)
}

func (r *repo) CreateOrder(ctx context.Context, o order.Order) error {
	query, args, err := r.builder.Insert("orders").
		Columns(orderColumns...).
		Values(o.ID, o.Status, o.PaymentMethod, o.CurrencyCode, o.GrandTotal,
			o.CustomerEmail, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if postgres.IsPgErrorUniqueViolation(err) {
			return order.ErrAlreadyExists
		}
		return fmt.Errorf("create order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	ins := r.builder.Insert("order_items").
		Columns("order_id", "id", "sku", "name", "price", "quantity", "qty_invoiced")
	for _, it := range o.Items {
		ins = ins.Values(o.ID, it.ID, it.SKU, it.Name, it.Price, it.Quantity, it.QtyInvoiced)
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items query: %w", err)
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	query, args, err := r.builder.Update("orders").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// CreateInvoice stores the invoice with its lines and bumps qty_invoiced on
// the covered order items.
func (r *repo) CreateInvoice(ctx context.Context, inv order.Invoice) error {
	query, args, err := r.builder.Insert("invoices").
		Columns("id", "order_id", "state", "payment_id", "grand_total", "created_at").
		Values(inv.ID, inv.OrderID, inv.State, inv.PaymentID, inv.GrandTotal, inv.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert invoice query: %w", err)
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if postgres.IsPgErrorUniqueViolation(err) {
			return order.ErrAlreadyExists
		}
		return fmt.Errorf("create invoice: %w", err)
	}

	if len(inv.Items) == 0 {
		return nil
	}

	ins := r.builder.Insert("invoice_items").
		Columns("invoice_id", "order_item_id", "sku", "name", "price", "quantity")
	for _, it := range inv.Items {
		ins = ins.Values(inv.ID, it.OrderItemID, it.SKU, it.Name, it.Price, it.Quantity)
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert invoice items query: %w", err)
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create invoice items: %w", err)
	}

	for _, it := range inv.Items {
		query, args, err = r.builder.Update("order_items").
			Set("qty_invoiced", squirrel.Expr("qty_invoiced + ?", it.Quantity)).
			Where(squirrel.Eq{"order_id": inv.OrderID, "id": it.OrderItemID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update qty_invoiced query: %w", err)
		}
		if _, err = r.db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("update qty_invoiced: %w", err)
		}
	}
	return nil
}
