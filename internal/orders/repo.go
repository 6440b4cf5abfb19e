package orders

import (
	"context"
	"fmt"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"time"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const orderColumns = `id, order_number, user_id, product_id, product_name, quantity,
	unit_price, total_price, status, order_date, updated_at`

func (r *Repo) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.Transact(ctx, r.DB, fn)
}

func (r *Repo) GetStock(ctx context.Context, productID string) (Stock, error) {
	s := Stock{ProductID: productID}
	err := postgres.Conn(ctx, r.DB).QueryRow(ctx,
		`SELECT name, quantity FROM products WHERE id = $1`, productID).Scan(&s.Name, &s.Quantity)
	if postgres.IsNoRows(err) {
		return Stock{}, ErrProductNotFound.WithDetails("productId", productID)
	}
	return s, err
}

func (r *Repo) DeductStock(ctx context.Context, productID string, qty int) (int, error) {
	q := postgres.Conn(ctx, r.DB)

	var remaining int
	err := q.QueryRow(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity`, productID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !postgres.IsNoRows(err) {
		return 0, err
	}

	// nothing updated: either gone or short
	var available int
	err = q.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if postgres.IsNoRows(err) {
		return 0, ErrProductNotFound.WithDetails("productId", productID)
	}
	if err != nil {
		return 0, err
	}
	return 0, ErrInsufficientStock.WithDetails("requested", qty).WithDetails("available", available)
}

func (r *Repo) LockOrderDay(ctx context.Context, prefix string) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix)
	return err
}

func (r *Repo) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	var n string
	err := postgres.Conn(ctx, r.DB).QueryRow(ctx, `
		SELECT order_number FROM orders
		WHERE order_number LIKE $1 || '%'
		ORDER BY order_number DESC
		LIMIT 1`, prefix).Scan(&n)
	if postgres.IsNoRows(err) {
		return "", nil
	}
	return n, err
}

func (r *Repo) InsertOrder(ctx context.Context, o Order) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		INSERT INTO orders(`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.OrderNumber, o.UserID, o.ProductID, o.ProductName, o.Quantity,
		o.UnitPrice, o.TotalPrice, string(o.Status), o.OrderDate, o.UpdatedAt)
	if postgres.IsUniqueViolation(err, "orders_order_number_key") {
		return ErrDuplicateOrderNumber.WithDetails("orderNumber", o.OrderNumber).Wrap(err)
	}
	return err
}

func (r *Repo) GetOrder(ctx context.Context, id string, forUpdate bool) (Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	return r.one(ctx, sql, id)
}

func (r *Repo) GetOrderForUser(ctx context.Context, id, userID string) (Order, error) {
	return r.one(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *Repo) SetStatus(ctx context.Context, id string, s Status, at time.Time) error {
	ct, err := postgres.Conn(ctx, r.DB).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(s), at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) ListAll(ctx context.Context) ([]OrderWithOwner, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx, `
		SELECT o.id, o.order_number, o.user_id, o.product_id, o.product_name, o.quantity,
		       o.unit_price, o.total_price, o.status, o.order_date, o.updated_at,
		       u.id, u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.order_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderWithOwner{}
	for rows.Next() {
		var (
			o                 OrderWithOwner
			status            string
			uID, uName, uMail *string
		)
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.ProductName, &o.Quantity,
			&o.UnitPrice, &o.TotalPrice, &status, &o.OrderDate, &o.UpdatedAt,
			&uID, &uName, &uMail); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		if uID != nil {
			o.User = &Owner{ID: *uID, Name: deref(uName), Email: deref(uMail)}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) one(ctx context.Context, sql string, args ...any) (Order, error) {
	o, err := scanOrder(postgres.Conn(ctx, r.DB).QueryRow(ctx, sql, args...))
	if postgres.IsNoRows(err) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.ProductName, &o.Quantity,
		&o.UnitPrice, &o.TotalPrice, &status, &o.OrderDate, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
