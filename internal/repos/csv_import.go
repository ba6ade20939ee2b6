package repos

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// column kinds understood by importCSV
const (
	colText = iota
	colInt
	colFloat
)

type csvTable struct {
	insert  string
	columns []int
}

var (
	chairCSV = csvTable{
		insert: `INSERT INTO chair(id, name, description, thumbnail, price, height, width, depth, color, features, kind, popularity, stock)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		columns: []int{colInt, colText, colText, colText, colInt, colInt, colInt, colInt, colText, colText, colText, colInt, colInt},
	}
	estateCSV = csvTable{
		insert: `INSERT INTO estate(id, name, description, thumbnail, address, latitude, longitude, rent, door_height, door_width, features, popularity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		columns: []int{colInt, colText, colText, colText, colText, colFloat, colFloat, colInt, colInt, colInt, colText, colInt},
	}
)

func (t csvTable) parse(rec []string) ([]any, error) {
	vals := make([]any, len(t.columns))
	for i, kind := range t.columns {
		field := rec[i]
		switch kind {
		case colInt:
			n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i+1, err)
			}
			vals[i] = n
		case colFloat:
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i+1, err)
			}
			vals[i] = f
		default:
			vals[i] = field
		}
	}
	return vals, nil
}

// importCSV inserts every record of r inside one transaction. Any malformed
// record or failed insert rolls the whole upload back.
func importCSV(ctx context.Context, db *sqlx.DB, t csvTable, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(t.columns)
	cr.ReuseRecord = true

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(t.insert))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("csv: %w", err)
		}
		vals, err := t.parse(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", n+1, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
