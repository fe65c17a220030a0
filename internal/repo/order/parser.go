package order_repo

import (
	"fmt"

	"MercadoPagoGateway/internal/domain/order"

	"github.com/jackc/pgx/v5"
)

func parseOrderRow(row pgx.Row) (orderRow, error) {
	var m orderRow
	err := row.Scan(
		&m.ID,
		&m.Status,
		&m.PaymentMethod,
		&m.CurrencyCode,
		&m.GrandTotal,
		&m.CustomerEmail,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func parseItemRows(rows pgx.Rows) ([]order.Item, error) {
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Price, &it.Quantity, &it.QtyInvoiced); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, nil
}
