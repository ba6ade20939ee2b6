package search

import (
	"errors"
	"fmt"
	"sort"

	"isuumo/internal/condition"
	"isuumo/internal/validate"
)

// InputError is a client mistake in the search parameters. Its message is safe
// to return to the caller.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// ErrNoCondition is returned when a search carries no predicate at all.
var ErrNoCondition = &InputError{Msg: "Search condition not found"}

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Offset() int { return p.Page * p.PerPage }

type ChairFilter struct {
	PriceRangeID  string
	HeightRangeID string
	WidthRangeID  string
	DepthRangeID  string
	Kind          string
	Color         string
	Features      []string
	Page
}

type EstateFilter struct {
	DoorHeightRangeID string
	DoorWidthRangeID  string
	RentRangeID       string
	Features          []string
	Page
}

var (
	chairParams  = []string{"priceRangeId", "heightRangeId", "widthRangeId", "depthRangeId", "kind", "color", "features", "page", "perPage"}
	estateParams = []string{"doorHeightRangeId", "doorWidthRangeId", "rentRangeId", "features", "page", "perPage"}
)

func checkKnown(q map[string]string, known []string) error {
	var unknown []string
	for k := range q {
		found := false
		for _, n := range known {
			if k == n {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return invalid("unknown parameter %s", unknown[0])
	}
	return nil
}

func parsePage(q map[string]string, maxPerPage int) (Page, error) {
	page, ok := validate.NonNegative(q["page"])
	if !ok {
		return Page{}, invalid("page condition invalid %s", q["page"])
	}
	perPage, ok := validate.NonNegative(q["perPage"])
	if !ok || (maxPerPage > 0 && perPage > maxPerPage) {
		return Page{}, invalid("perPage condition invalid")
	}
	return Page{Page: page, PerPage: perPage}, nil
}

// ParseChairFilter validates raw query values. Empty values count as absent.
func ParseChairFilter(q map[string]string, maxPerPage int) (ChairFilter, error) {
	if err := checkKnown(q, chairParams); err != nil {
		return ChairFilter{}, err
	}
	p, err := parsePage(q, maxPerPage)
	if err != nil {
		return ChairFilter{}, err
	}
	return ChairFilter{
		PriceRangeID:  q["priceRangeId"],
		HeightRangeID: q["heightRangeId"],
		WidthRangeID:  q["widthRangeId"],
		DepthRangeID:  q["depthRangeId"],
		Kind:          q["kind"],
		Color:         q["color"],
		Features:      validate.Features(q["features"]),
		Page:          p,
	}, nil
}

func ParseEstateFilter(q map[string]string, maxPerPage int) (EstateFilter, error) {
	if err := checkKnown(q, estateParams); err != nil {
		return EstateFilter{}, err
	}
	p, err := parsePage(q, maxPerPage)
	if err != nil {
		return EstateFilter{}, err
	}
	return EstateFilter{
		DoorHeightRangeID: q["doorHeightRangeId"],
		DoorWidthRangeID:  q["doorWidthRangeId"],
		RentRangeID:       q["rentRangeId"],
		Features:          validate.Features(q["features"]),
		Page:              p,
	}, nil
}

type rangeFilter struct {
	param  string
	dim    string
	column string
	id     string
}

func addRanges(b *Builder, cat *condition.Catalog, c condition.Category, filters []rangeFilter) error {
	for _, f := range filters {
		if f.id == "" {
			continue
		}
		r, err := cat.Lookup(c, f.dim, f.id)
		if errors.Is(err, condition.ErrRangeNotFound) {
			return invalid("%s invalid", f.param)
		}
		if err != nil {
			return err
		}
		b.Range(f.column, r)
	}
	return nil
}

// ChairQuery resolves f against the catalog. Chairs out of stock never match.
func ChairQuery(cat *condition.Catalog, f ChairFilter) (*Builder, error) {
	b := NewBuilder()
	err := addRanges(b, cat, condition.Chair, []rangeFilter{
		{"priceRangeId", "price", "price", f.PriceRangeID},
		{"heightRangeId", "height", "height", f.HeightRangeID},
		{"widthRangeId", "width", "width", f.WidthRangeID},
		{"depthRangeId", "depth", "depth", f.DepthRangeID},
	})
	if err != nil {
		return nil, err
	}
	if f.Kind != "" {
		b.Where("kind = ?", f.Kind)
	}
	if f.Color != "" {
		b.Where("color = ?", f.Color)
	}
	for _, feat := range f.Features {
		b.Contains("features", feat)
	}
	if b.Len() == 0 {
		return nil, ErrNoCondition
	}
	return b.Fixed("stock > 0"), nil
}

func EstateQuery(cat *condition.Catalog, f EstateFilter) (*Builder, error) {
	b := NewBuilder()
	err := addRanges(b, cat, condition.Estate, []rangeFilter{
		{"doorHeightRangeId", "doorHeight", "door_height", f.DoorHeightRangeID},
		{"doorWidthRangeId", "doorWidth", "door_width", f.DoorWidthRangeID},
		{"rentRangeId", "rent", "rent", f.RentRangeID},
	})
	if err != nil {
		return nil, err
	}
	for _, feat := range f.Features {
		b.Contains("features", feat)
	}
	if b.Len() == 0 {
		return nil, ErrNoCondition
	}
	return b, nil
}
