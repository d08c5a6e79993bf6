package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

const productSchema = `
CREATE TABLE IF NOT EXISTS products (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	vertical          TEXT NOT NULL,
	criticality       TEXT NOT NULL,
	lead_time_days    INT NOT NULL,
	unit_cost         DOUBLE PRECISION NOT NULL,
	holding_cost_rate DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sales_observations (
	product_id TEXT NOT NULL REFERENCES products(id),
	sale_date  DATE NOT NULL,
	quantity   DOUBLE PRECISION NOT NULL,
	unit_price DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (product_id, sale_date)
);

CREATE INDEX IF NOT EXISTS idx_sales_product_date
	ON sales_observations (product_id, sale_date DESC);
`

// ProductRepository is the sqlx-backed implementation of the engine's
// read model.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// EnsureSchema creates the product tables if they do not exist.
func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, productSchema); err != nil {
		return fmt.Errorf("ensure product schema: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, vertical, criticality, lead_time_days, unit_cost, holding_cost_rate, created_at
		FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT id, name, vertical, criticality, lead_time_days, unit_cost, holding_cost_rate, created_at
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetSalesHistory(ctx context.Context, productID string, days int) ([]domain.SalesObservation, error) {
	// Verify the product exists so callers get NOT_FOUND instead of an
	// empty series.
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	query := `
		SELECT sale_date, quantity, unit_price
		FROM sales_observations
		WHERE product_id = $1
		ORDER BY sale_date`
	args := []interface{}{productID}
	if days > 0 {
		query = `
		SELECT sale_date, quantity, unit_price FROM (
			SELECT sale_date, quantity, unit_price
			FROM sales_observations
			WHERE product_id = $1
			ORDER BY sale_date DESC
			LIMIT $2
		) recent ORDER BY sale_date`
		args = append(args, days)
	}

	var series []domain.SalesObservation
	if err := r.db.SelectContext(ctx, &series, query, args...); err != nil {
		return nil, fmt.Errorf("get sales history: %w", err)
	}
	return series, nil
}

func (r *ProductRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, vertical, criticality, lead_time_days, unit_cost, holding_cost_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			vertical = EXCLUDED.vertical,
			criticality = EXCLUDED.criticality,
			lead_time_days = EXCLUDED.lead_time_days,
			unit_cost = EXCLUDED.unit_cost,
			holding_cost_rate = EXCLUDED.holding_cost_rate`,
		p.ID, p.Name, p.Vertical, p.Criticality, p.LeadTimeDays, p.UnitCost, p.HoldingCostRate, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *ProductRepository) SaveSalesHistory(ctx context.Context, productID string, series []domain.SalesObservation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sales_observations (product_id, sale_date, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, sale_date) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				unit_price = EXCLUDED.unit_price`)
		if err != nil {
			return fmt.Errorf("prepare sales insert: %w", err)
		}
		defer stmt.Close()

		for _, obs := range series {
			if _, err := stmt.ExecContext(ctx, productID, obs.Date, obs.Quantity, obs.UnitPrice); err != nil {
				return fmt.Errorf("insert sales observation: %w", err)
			}
		}
		return nil
	})
}
