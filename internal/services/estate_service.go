package services

import (
	"context"
	"io"

	"isuumo/internal/condition"
	"isuumo/internal/domain"
	"isuumo/internal/metrics"
	"isuumo/internal/repos"
	"isuumo/internal/search"
)

type EstateService struct {
	Estates      *repos.EstateRepo
	Chairs       *repos.ChairRepo
	Catalog      *condition.Catalog
	ListLimit    int
	NazotteLimit int
	MaxPerPage   int
}

func NewEstateService(estates *repos.EstateRepo, chairs *repos.ChairRepo, cat *condition.Catalog, listLimit, nazotteLimit, maxPerPage int) *EstateService {
	if listLimit <= 0 {
		listLimit = 20
	}
	if nazotteLimit <= 0 {
		nazotteLimit = 50
	}
	return &EstateService{
		Estates:      estates,
		Chairs:       chairs,
		Catalog:      cat,
		ListLimit:    listLimit,
		NazotteLimit: nazotteLimit,
		MaxPerPage:   maxPerPage,
	}
}

func (s *EstateService) LowPriced(ctx context.Context) ([]domain.Estate, error) {
	return s.Estates.LowPriced(ctx, s.ListLimit)
}

func (s *EstateService) Search(ctx context.Context, query map[string]string) ([]domain.Estate, int64, error) {
	f, err := search.ParseEstateFilter(query, s.MaxPerPage)
	if err != nil {
		return nil, 0, err
	}
	b, err := search.EstateQuery(s.Catalog, f)
	if err != nil {
		return nil, 0, err
	}
	return s.Estates.Search(ctx, b, f.Page)
}

func (s *EstateService) Get(ctx context.Context, id int64) (domain.Estate, error) {
	return s.Estates.Get(ctx, id)
}

// RecommendedFor looks the chair up regardless of stock; an unknown chair is
// repos.ErrNotFound.
func (s *EstateService) RecommendedFor(ctx context.Context, chairID int64) ([]domain.Estate, error) {
	chair, err := s.Chairs.Find(ctx, chairID)
	if err != nil {
		return nil, err
	}
	return s.Estates.RecommendedFor(ctx, chair, s.ListLimit)
}

func (s *EstateService) Nazotte(ctx context.Context, coords []domain.Coordinate) ([]domain.Estate, error) {
	estates, candidates, err := s.Estates.SearchInPolygon(ctx, coords, s.NazotteLimit)
	if err != nil {
		return nil, err
	}
	metrics.NazotteCandidates.Observe(float64(candidates))
	return estates, nil
}

// RequestDocument only checks that the estate exists; delivery is out of scope.
func (s *EstateService) RequestDocument(ctx context.Context, id int64) error {
	_, err := s.Estates.Get(ctx, id)
	return err
}

func (s *EstateService) Import(ctx context.Context, r io.Reader) (int, error) {
	n, err := s.Estates.ImportCSV(ctx, r)
	if err != nil {
		return 0, err
	}
	metrics.ImportedRows.WithLabelValues("estate").Add(float64(n))
	return n, nil
}
