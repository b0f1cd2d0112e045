package provider

import (
	"context"
	"fmt"

	"github.com/dreitier/treefactor/config"
	"github.com/dreitier/treefactor/storage"
	log "github.com/sirupsen/logrus"
)

// NewStore creates the document store described by cfg.
func NewStore(ctx context.Context, cfg *config.StorageConfiguration) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infof("Using %s storage", cfg.Type)

	var (
		store storage.Store
		err   error
	)

	switch cfg.Type {
	case config.StorageLocal:
		store, err = NewLocalStore(cfg.Directory)
	case config.StorageS3:
		store, err = NewS3Store(ctx, cfg)
	case config.StorageSql:
		store, err = NewSqlStore(ctx, cfg.Driver, cfg.Dsn)
	case config.StorageMemory:
		store = storage.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}
