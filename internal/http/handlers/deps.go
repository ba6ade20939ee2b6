package handlers

import (
	"github.com/jmoiron/sqlx"

	"isuumo/internal/cache"
	"isuumo/internal/condition"
	"isuumo/internal/config"
	"isuumo/internal/repos"
	"isuumo/internal/services"
)

type Deps struct {
	ChairHandler      *ChairHandler
	EstateHandler     *EstateHandler
	ConditionHandler  *ConditionHandler
	InitializeHandler *InitializeHandler
	Cache             cache.Store
}

func NewDeps(db *sqlx.DB, cfg config.Config, cat *condition.Catalog, store cache.Store) *Deps {
	if store == nil {
		store = cache.Nop{}
	}
	chairRepo := repos.NewChairRepo(db)
	estateRepo := repos.NewEstateRepo(db)

	chairSvc := services.NewChairService(chairRepo, cat, cfg.ListLimit, cfg.MaxPerPage)
	estateSvc := services.NewEstateService(estateRepo, chairRepo, cat, cfg.ListLimit, cfg.NazotteLimit, cfg.MaxPerPage)
	storageSvc := services.NewStorageService(db, store)

	return &Deps{
		ChairHandler:      &ChairHandler{Chairs: chairSvc, Cache: store},
		EstateHandler:     &EstateHandler{Estates: estateSvc, Cache: store},
		ConditionHandler:  &ConditionHandler{Catalog: cat},
		InitializeHandler: &InitializeHandler{Storage: storageSvc},
		Cache:             store,
	}
}
