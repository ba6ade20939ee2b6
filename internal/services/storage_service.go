package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"isuumo/internal/cache"
	"isuumo/internal/repos"
)

// StorageService resets the catalogs to the seed data.
type StorageService struct {
	DB    *sqlx.DB
	Cache cache.Store
}

func NewStorageService(db *sqlx.DB, store cache.Store) *StorageService {
	if store == nil {
		store = cache.Nop{}
	}
	return &StorageService{DB: db, Cache: store}
}

// Initialize drops and reloads both catalogs, then empties the response cache
// so no pre-reset body is served.
func (s *StorageService) Initialize(ctx context.Context) error {
	if err := repos.Reset(ctx, s.DB); err != nil {
		return err
	}
	if err := s.Cache.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}
