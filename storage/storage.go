package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
	inmemstore "github.com/trezcool/rekodi/storage/inmem"
	redisstore "github.com/trezcool/rekodi/storage/redis"
)

// Store bundles the repositories of the configured engine.
type Store struct {
	Sessions session.Repository
	Views    dashboard.Repository
	closer   io.Closer
}

// Open sets up the store selected by conf.Store.Engine.
// The in-memory store evicts expired entries until ctx is cancelled.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Store.Engine {
	case core.StoreMemory, "":
		db := inmemstore.Open()
		go db.Run(ctx, conf.Server.SessionExpirationDelta/2)
		return &Store{
			Sessions: inmemstore.NewSessionRepository(db),
			Views:    inmemstore.NewViewRepository(db),
			closer:   db,
		}, nil
	case core.StoreRedis:
		rdb, err := redisstore.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening redis")
		}
		return &Store{
			Sessions: redisstore.NewSessionRepository(rdb),
			Views:    redisstore.NewViewRepository(rdb),
			closer:   rdb,
		}, nil
	}
	return nil, fmt.Errorf("unknown store engine %q", conf.Store.Engine)
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
