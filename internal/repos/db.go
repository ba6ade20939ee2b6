package repos

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	applog "isuumo/internal/log"
)

// ErrNotFound is returned when a row is absent (or, for chairs, sold out).
var ErrNotFound = errors.New("not found")

//go:embed seed/chair.csv seed/estate.csv
var seedFS embed.FS

// OpenDB connects to driver ("sqlite" or "postgres"), creates the schema when
// missing and loads the seed listings into an empty database.
func OpenDB(driver, dsn string, maxConns int) (*sqlx.DB, error) {
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer; also keeps a :memory: database alive on a single connection
		maxConns = 1
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx := context.Background()
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedIfEmpty(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate&_pragma=busy_timeout(5000)"
}

const schema = `
CREATE TABLE IF NOT EXISTS chair(
  id          BIGINT PRIMARY KEY,
  name        VARCHAR(64) NOT NULL,
  description VARCHAR(4096) NOT NULL,
  thumbnail   VARCHAR(128) NOT NULL,
  price       INTEGER NOT NULL,
  height      INTEGER NOT NULL,
  width       INTEGER NOT NULL,
  depth       INTEGER NOT NULL,
  color       VARCHAR(64) NOT NULL,
  features    VARCHAR(64) NOT NULL,
  kind        VARCHAR(64) NOT NULL,
  popularity  INTEGER NOT NULL,
  stock       INTEGER NOT NULL CHECK (stock >= 0)
);
CREATE INDEX IF NOT EXISTS idx_chair_popularity ON chair(popularity DESC, id);
CREATE INDEX IF NOT EXISTS idx_chair_price      ON chair(price, id);

CREATE TABLE IF NOT EXISTS estate(
  id          BIGINT PRIMARY KEY,
  name        VARCHAR(64) NOT NULL,
  description VARCHAR(4096) NOT NULL,
  thumbnail   VARCHAR(128) NOT NULL,
  address     VARCHAR(128) NOT NULL,
  latitude    DOUBLE PRECISION NOT NULL,
  longitude   DOUBLE PRECISION NOT NULL,
  rent        INTEGER NOT NULL,
  door_height INTEGER NOT NULL,
  door_width  INTEGER NOT NULL,
  features    VARCHAR(64) NOT NULL,
  popularity  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_estate_popularity ON estate(popularity DESC, id);
CREATE INDEX IF NOT EXISTS idx_estate_rent       ON estate(rent, id);
CREATE INDEX IF NOT EXISTS idx_estate_location   ON estate(latitude, longitude);
`

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM chair`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.Info(nil, "db.seed", nil)
	return loadSeed(ctx, db)
}

func loadSeed(ctx context.Context, db *sqlx.DB) error {
	chairs, err := seedFS.ReadFile("seed/chair.csv")
	if err != nil {
		return err
	}
	estates, err := seedFS.ReadFile("seed/estate.csv")
	if err != nil {
		return err
	}
	if _, err := NewChairRepo(db).ImportCSV(ctx, bytes.NewReader(chairs)); err != nil {
		return fmt.Errorf("seed chairs: %w", err)
	}
	if _, err := NewEstateRepo(db).ImportCSV(ctx, bytes.NewReader(estates)); err != nil {
		return fmt.Errorf("seed estates: %w", err)
	}
	return nil
}

// Reset drops both catalogs, recreates them and reloads the seed listings.
func Reset(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS chair; DROP TABLE IF EXISTS estate;`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		return err
	}
	return loadSeed(ctx, db)
}
