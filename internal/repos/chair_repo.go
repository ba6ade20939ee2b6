package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"isuumo/internal/domain"
	"isuumo/internal/search"
)

const chairColumns = `id, name, description, thumbnail, price, height, width, depth, color, features, kind, popularity, stock`

type ChairRepo struct {
	db      *sqlx.DB
	dialect dialect
}

func NewChairRepo(db *sqlx.DB) *ChairRepo { return &ChairRepo{db: db, dialect: dialectOf(db)} }

// LowPriced returns the cheapest chairs still in stock.
func (r *ChairRepo) LowPriced(ctx context.Context, limit int) ([]domain.Chair, error) {
	out := []domain.Chair{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+chairColumns+`
		FROM chair
		WHERE stock > 0
		ORDER BY price ASC, id ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("chair low priced: %w", err)
	}
	return out, nil
}

// Search runs the count and page queries for b. The count ignores pagination.
func (r *ChairRepo) Search(ctx context.Context, b *search.Builder, p search.Page) ([]domain.Chair, int64, error) {
	var count int64
	q, args := b.CountQuery("chair")
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(q), args...); err != nil {
		return nil, 0, fmt.Errorf("chair count: %w", err)
	}

	out := []domain.Chair{}
	q, args = b.SelectQuery("chair", chairColumns, p)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, 0, fmt.Errorf("chair search: %w", err)
	}
	return out, count, nil
}

// Find returns the chair regardless of stock.
func (r *ChairRepo) Find(ctx context.Context, id int64) (domain.Chair, error) {
	var c domain.Chair
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+chairColumns+` FROM chair WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("chair get: %w", err)
	}
	return c, nil
}

// Get returns a chair that is still purchasable.
func (r *ChairRepo) Get(ctx context.Context, id int64) (domain.Chair, error) {
	c, err := r.Find(ctx, id)
	if err != nil {
		return c, err
	}
	if c.Stock <= 0 {
		return domain.Chair{}, ErrNotFound
	}
	return c, nil
}

// Buy takes one unit of stock. Concurrent buyers of the same chair are
// serialized by the row lock (postgres) or the single sqlite writer.
func (r *ChairRepo) Buy(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chair buy: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stock int64
	err = tx.GetContext(ctx, &stock,
		tx.Rebind(`SELECT stock FROM chair WHERE id = ? AND stock > 0`+r.dialect.lockSuffix), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("chair buy: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE chair SET stock = stock - 1 WHERE id = ?`), id); err != nil {
		return fmt.Errorf("chair buy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("chair buy: %w", err)
	}
	return nil
}

// ImportCSV loads chair rows (no header) in one transaction.
func (r *ChairRepo) ImportCSV(ctx context.Context, in io.Reader) (int, error) {
	return importCSV(ctx, r.db, chairCSV, in)
}
