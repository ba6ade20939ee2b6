package repos

import (
	"database/sql/driver"
	"testing"

	"isuumo/internal/domain"
)

func TestWKT(t *testing.T) {
	tri := []domain.Coordinate{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4.5}, {Latitude: 5, Longitude: 2}}
	if got, want := wktPolygon(tri), "POLYGON((1 2,3 4.5,5 2,1 2))"; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
	if len(tri) != 3 {
		t.Fatal("closing the ring must not modify the input")
	}
	if got := pgPolygon(tri); got != "((1,2),(3,4.5),(5,2))" {
		t.Fatalf("got %s", got)
	}
	if got := wktPoint(domain.Coordinate{Latitude: 35.7, Longitude: 139.74}); got != "POINT(35.7 139.74)" {
		t.Fatalf("got %s", got)
	}
}

func TestSTContains(t *testing.T) {
	square := "POLYGON((0 0,0 10,10 10,10 0,0 0))"
	cases := []struct {
		point string
		want  int64
	}{
		{"POINT(5 5)", 1},
		{"POINT(0.5 9.5)", 1},
		{"POINT(11 5)", 0},
		{"POINT(-1 -1)", 0},
	}
	for _, tc := range cases {
		got, err := stContains(nil, []driver.Value{square, tc.point})
		if err != nil {
			t.Fatalf("%s: %v", tc.point, err)
		}
		if got != tc.want {
			t.Errorf("%s: want %d, got %v", tc.point, tc.want, got)
		}
	}
}

func TestSTContainsMalformed(t *testing.T) {
	for _, args := range [][]driver.Value{
		{"POLYGON((0 0,0 1,1 1))", "POINT(x 1)"},
		{"LINESTRING(0 0,1 1)", "POINT(0 0)"},
		{int64(3), "POINT(0 0)"},
		{"POLYGON((0 0,0 1,1 1))", int64(1)},
	} {
		if _, err := stContains(nil, args); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSTContainsConcavePolygon(t *testing.T) {
	// U shape; the notch is outside
	u := wktPolygon([]domain.Coordinate{
		{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 3}, {Latitude: 3, Longitude: 3},
		{Latitude: 3, Longitude: 2}, {Latitude: 1, Longitude: 2}, {Latitude: 1, Longitude: 1},
		{Latitude: 3, Longitude: 1}, {Latitude: 3, Longitude: 0},
	})
	inside := func(lat, lon float64) bool {
		t.Helper()
		got, err := stContains(nil, []driver.Value{u, wktPoint(domain.Coordinate{Latitude: lat, Longitude: lon})})
		if err != nil {
			t.Fatal(err)
		}
		return got == int64(1)
	}
	if !inside(2, 0.5) {
		t.Fatal("left arm should be inside")
	}
	if inside(2, 1.5) {
		t.Fatal("notch should be outside")
	}
	if !inside(0.5, 1.5) {
		t.Fatal("base of the U should be inside")
	}
}
