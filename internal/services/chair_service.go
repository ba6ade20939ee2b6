package services

import (
	"context"
	"errors"
	"io"

	"isuumo/internal/condition"
	"isuumo/internal/domain"
	"isuumo/internal/metrics"
	"isuumo/internal/repos"
	"isuumo/internal/search"
)

type ChairService struct {
	Chairs     *repos.ChairRepo
	Catalog    *condition.Catalog
	ListLimit  int
	MaxPerPage int
}

func NewChairService(chairs *repos.ChairRepo, cat *condition.Catalog, listLimit, maxPerPage int) *ChairService {
	if listLimit <= 0 {
		listLimit = 20
	}
	return &ChairService{Chairs: chairs, Catalog: cat, ListLimit: listLimit, MaxPerPage: maxPerPage}
}

func (s *ChairService) LowPriced(ctx context.Context) ([]domain.Chair, error) {
	return s.Chairs.LowPriced(ctx, s.ListLimit)
}

// Search validates the raw query and runs it. Validation failures are
// *search.InputError and happen before any query.
func (s *ChairService) Search(ctx context.Context, query map[string]string) ([]domain.Chair, int64, error) {
	f, err := search.ParseChairFilter(query, s.MaxPerPage)
	if err != nil {
		return nil, 0, err
	}
	b, err := search.ChairQuery(s.Catalog, f)
	if err != nil {
		return nil, 0, err
	}
	return s.Chairs.Search(ctx, b, f.Page)
}

func (s *ChairService) Get(ctx context.Context, id int64) (domain.Chair, error) {
	return s.Chairs.Get(ctx, id)
}

func (s *ChairService) Buy(ctx context.Context, id int64) error {
	err := s.Chairs.Buy(ctx, id)
	switch {
	case err == nil:
		metrics.ChairPurchases.WithLabelValues("ok").Inc()
	case errors.Is(err, repos.ErrNotFound):
		metrics.ChairPurchases.WithLabelValues("sold_out").Inc()
	default:
		metrics.ChairPurchases.WithLabelValues("error").Inc()
	}
	return err
}

func (s *ChairService) Import(ctx context.Context, r io.Reader) (int, error) {
	n, err := s.Chairs.ImportCSV(ctx, r)
	if err != nil {
		return 0, err
	}
	metrics.ImportedRows.WithLabelValues("chair").Add(float64(n))
	return n, nil
}
