package products

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const productColumns = `id, name, description, type, price, quantity, supplier, category, brand,
	batch_number, expiry_date, min_stock_level, image, created_at, updated_at`

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	return r.many(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
}

func (r *Repo) LowStock(ctx context.Context) ([]Product, error) {
	return r.many(ctx, `SELECT `+productColumns+` FROM products
		WHERE quantity <= min_stock_level
		ORDER BY quantity ASC, name ASC`)
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(postgres.Conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if postgres.IsNoRows(err) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *Repo) Insert(ctx context.Context, p Product) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		INSERT INTO products(`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Name, p.Description, p.Type, p.Price, p.Quantity, p.Supplier, p.Category, p.Brand,
		p.BatchNumber, p.ExpiryDate, p.MinStockLevel, p.Image, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repo) Update(ctx context.Context, p Product) error {
	ct, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		UPDATE products SET
			name = $2, description = $3, type = $4, price = $5, quantity = $6, supplier = $7,
			category = $8, brand = $9, batch_number = $10, expiry_date = $11,
			min_stock_level = $12, image = $13, updated_at = $14
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Type, p.Price, p.Quantity, p.Supplier,
		p.Category, p.Brand, p.BatchNumber, p.ExpiryDate,
		p.MinStockLevel, p.Image, p.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := postgres.Conn(ctx, r.DB).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) many(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Type, &p.Price, &p.Quantity, &p.Supplier,
		&p.Category, &p.Brand, &p.BatchNumber, &p.ExpiryDate, &p.MinStockLevel, &p.Image,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}
