package repos

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"modernc.org/sqlite"

	"isuumo/internal/domain"
)

// dialect holds the few statements that differ between engines.
type dialect struct {
	// contains is a predicate with two placeholders: polygon, point.
	contains   string
	polygon    func([]domain.Coordinate) string
	point      func(domain.Coordinate) string
	lockSuffix string
}

var (
	sqliteDialect = dialect{
		contains: "ST_Contains(?, ?)",
		polygon:  wktPolygon,
		point:    wktPoint,
	}
	postgresDialect = dialect{
		contains:   "CAST(? AS polygon) @> CAST(? AS point)",
		polygon:    pgPolygon,
		point:      pgPoint,
		lockSuffix: " FOR UPDATE",
	}
)

func dialectOf(db *sqlx.DB) dialect {
	if db.DriverName() == "postgres" {
		return postgresDialect
	}
	return sqliteDialect
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// closedRing repeats the first vertex at the end unless it already is there.
func closedRing(coords []domain.Coordinate) []domain.Coordinate {
	if len(coords) == 0 || coords[0] == coords[len(coords)-1] {
		return coords
	}
	return append(coords[:len(coords):len(coords)], coords[0])
}

func wktPolygon(coords []domain.Coordinate) string {
	parts := make([]string, 0, len(coords)+1)
	for _, c := range closedRing(coords) {
		parts = append(parts, ftoa(c.Latitude)+" "+ftoa(c.Longitude))
	}
	return "POLYGON((" + strings.Join(parts, ",") + "))"
}

func wktPoint(c domain.Coordinate) string {
	return "POINT(" + ftoa(c.Latitude) + " " + ftoa(c.Longitude) + ")"
}

func pgPolygon(coords []domain.Coordinate) string {
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, pgPoint(c))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func pgPoint(c domain.Coordinate) string {
	return "(" + ftoa(c.Latitude) + "," + ftoa(c.Longitude) + ")"
}

func init() {
	// sqlite has no geometry support; expose the containment test the
	// postgres dialect gets from the polygon @> point operator.
	if err := sqlite.RegisterDeterministicScalarFunction("ST_Contains", 2, stContains); err != nil {
		panic(err)
	}
}

func stContains(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	polyText, err := wktArg(args[0])
	if err != nil {
		return nil, err
	}
	pointText, err := wktArg(args[1])
	if err != nil {
		return nil, err
	}
	poly, err := wkt.UnmarshalPolygon(polyText)
	if err != nil {
		return nil, fmt.Errorf("ST_Contains: polygon %q: %w", polyText, err)
	}
	pt, err := wkt.UnmarshalPoint(pointText)
	if err != nil {
		return nil, fmt.Errorf("ST_Contains: point %q: %w", pointText, err)
	}
	if len(poly) == 0 || len(poly[0]) < 3 {
		return int64(0), nil
	}
	if planar.PolygonContains(poly, pt) {
		return int64(1), nil
	}
	return int64(0), nil
}

func wktArg(v driver.Value) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case []byte:
		return strings.TrimSpace(string(t)), nil
	default:
		return "", fmt.Errorf("ST_Contains: want text, got %T", v)
	}
}
