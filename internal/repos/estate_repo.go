package repos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"isuumo/internal/domain"
	applog "isuumo/internal/log"
	"isuumo/internal/search"
)

const estateColumns = `id, name, description, thumbnail, address, latitude, longitude, rent, door_height, door_width, features, popularity`

type EstateRepo struct {
	db      *sqlx.DB
	dialect dialect
}

func NewEstateRepo(db *sqlx.DB) *EstateRepo { return &EstateRepo{db: db, dialect: dialectOf(db)} }

func (r *EstateRepo) LowPriced(ctx context.Context, limit int) ([]domain.Estate, error) {
	out := []domain.Estate{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+estateColumns+`
		FROM estate
		ORDER BY rent ASC, id ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("estate low priced: %w", err)
	}
	return out, nil
}

func (r *EstateRepo) Search(ctx context.Context, b *search.Builder, p search.Page) ([]domain.Estate, int64, error) {
	var count int64
	q, args := b.CountQuery("estate")
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(q), args...); err != nil {
		return nil, 0, fmt.Errorf("estate count: %w", err)
	}

	out := []domain.Estate{}
	q, args = b.SelectQuery("estate", estateColumns, p)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, 0, fmt.Errorf("estate search: %w", err)
	}
	return out, count, nil
}

func (r *EstateRepo) Get(ctx context.Context, id int64) (domain.Estate, error) {
	var e domain.Estate
	err := r.db.GetContext(ctx, &e, r.db.Rebind(`SELECT `+estateColumns+` FROM estate WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("estate get: %w", err)
	}
	return e, nil
}

// RecommendedFor returns estates whose door admits chair in any orientation:
// some pair of its dimensions fits under (door_width, door_height).
func (r *EstateRepo) RecommendedFor(ctx context.Context, chair domain.Chair, limit int) ([]domain.Estate, error) {
	w, h, d := chair.Width, chair.Height, chair.Depth
	out := []domain.Estate{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+estateColumns+`
		FROM estate
		WHERE (door_width >= ? AND door_height >= ?)
		   OR (door_width >= ? AND door_height >= ?)
		   OR (door_width >= ? AND door_height >= ?)
		   OR (door_width >= ? AND door_height >= ?)
		   OR (door_width >= ? AND door_height >= ?)
		   OR (door_width >= ? AND door_height >= ?)
		ORDER BY popularity DESC, id ASC
		LIMIT ?`), w, h, w, d, h, w, h, d, d, w, d, h, limit)
	if err != nil {
		return nil, fmt.Errorf("estate recommended: %w", err)
	}
	return out, nil
}

// SearchInPolygon returns the estates inside the polygon described by coords.
// Candidates come from the bounding box, capped at limit, so a dense box can
// hide matches beyond the cap.
func (r *EstateRepo) SearchInPolygon(ctx context.Context, coords []domain.Coordinate, limit int) ([]domain.Estate, int, error) {
	out := []domain.Estate{}
	if len(coords) < 3 {
		return out, 0, nil
	}

	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("nazotte: %w", err)
	}
	defer conn.Close()

	box := domain.BoundingBoxOf(coords)
	var candidates []domain.Estate
	err = conn.SelectContext(ctx, &candidates, r.db.Rebind(`
		SELECT `+estateColumns+`
		FROM estate
		WHERE latitude <= ? AND latitude >= ? AND longitude <= ? AND longitude >= ?
		ORDER BY popularity DESC, id ASC
		LIMIT ?`),
		box.MaxLatitude, box.MinLatitude, box.MaxLongitude, box.MinLongitude, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("nazotte candidates: %w", err)
	}

	polygon := r.dialect.polygon(coords)
	q := r.db.Rebind(`SELECT id FROM estate WHERE id = ? AND ` + r.dialect.contains)
	for _, e := range candidates {
		var id int64
		err := conn.GetContext(ctx, &id, q, e.ID, polygon,
			r.dialect.point(domain.Coordinate{Latitude: e.Latitude, Longitude: e.Longitude}))
		switch {
		case err == nil:
			out = append(out, e)
		case errors.Is(err, sql.ErrNoRows):
		case systemic(ctx, err):
			return nil, 0, fmt.Errorf("nazotte contains: %w", err)
		default:
			applog.Error(nil, "nazotte.contains.fail", err, map[string]any{"estate_id": e.ID})
		}
	}
	return out, len(candidates), nil
}

// systemic reports errors that make the rest of the request pointless.
func systemic(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (r *EstateRepo) ImportCSV(ctx context.Context, in io.Reader) (int, error) {
	return importCSV(ctx, r.db, estateCSV, in)
}
