package reports

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Source = (*Repo)(nil)

// local order date in the requested zone
const localDate = `(order_date AT TIME ZONE COALESCE(NULLIF($1, ''), current_setting('TimeZone')))`

func (r *Repo) SalesByDay(ctx context.Context, zone string) ([]DailySales, error) {
	return collect(ctx, r.DB, `
		SELECT EXTRACT(YEAR FROM `+localDate+`)::int  AS y,
		       EXTRACT(MONTH FROM `+localDate+`)::int AS m,
		       EXTRACT(DAY FROM `+localDate+`)::int   AS d,
		       COALESCE(SUM(total_price), 0)::float8,
		       COUNT(*)::int
		FROM orders
		GROUP BY y, m, d
		ORDER BY y, m, d`,
		[]any{zone},
		func(row pgx.Rows) (DailySales, error) {
			var s DailySales
			err := row.Scan(&s.ID.Year, &s.ID.Month, &s.ID.Day, &s.TotalSales, &s.Count)
			return s, err
		})
}

func (r *Repo) InventoryByCategory(ctx context.Context) ([]CategoryInventory, error) {
	return collect(ctx, r.DB, `
		SELECT category,
		       COUNT(*)::int,
		       COALESCE(SUM(quantity), 0)::int,
		       COALESCE(SUM(price * quantity), 0)::float8
		FROM products
		GROUP BY category
		ORDER BY category`,
		nil,
		func(row pgx.Rows) (CategoryInventory, error) {
			var c CategoryInventory
			err := row.Scan(&c.ID, &c.TotalItems, &c.TotalQuantity, &c.TotalValue)
			return c, err
		})
}

func (r *Repo) LowStock(ctx context.Context) ([]LowStockItem, error) {
	return collect(ctx, r.DB, `
		SELECT id, name, quantity, min_stock_level
		FROM products
		WHERE quantity <= min_stock_level
		ORDER BY quantity ASC, name ASC`,
		nil,
		func(row pgx.Rows) (LowStockItem, error) {
			var it LowStockItem
			err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.MinStockLevel)
			return it, err
		})
}

func (r *Repo) SalesByMonth(ctx context.Context, zone string) ([]MonthlySales, error) {
	return collect(ctx, r.DB, `
		SELECT EXTRACT(YEAR FROM `+localDate+`)::int  AS y,
		       EXTRACT(MONTH FROM `+localDate+`)::int AS m,
		       COALESCE(SUM(total_price), 0)::float8
		FROM orders
		GROUP BY y, m
		ORDER BY y, m`,
		[]any{zone},
		func(row pgx.Rows) (MonthlySales, error) {
			var s MonthlySales
			err := row.Scan(&s.ID.Year, &s.ID.Month, &s.TotalSales)
			return s, err
		})
}

func collect[T any](ctx context.Context, db *pgxpool.Pool, sql string, args []any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := postgres.Conn(ctx, db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
