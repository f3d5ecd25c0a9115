package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
)

const (
	sessionPrefix = "rekodi:session:"
	viewPrefix    = "rekodi:view:"
)

// Open connects to the configured Redis server and waits for it to be ready.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Store.RedisAddr,
		Password: conf.Store.RedisPassword,
		DB:       conf.Store.RedisDB,
	})
	if err := ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// ping waits for the server to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, rdb *redis.Client) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "redis ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "redis ping timeout")
}

func set(ctx context.Context, rdb redis.Cmdable, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding "+key)
	}
	if ttl < 0 {
		ttl = 0
	}
	return errors.Wrap(rdb.Set(ctx, key, data, ttl).Err(), "setting "+key)
}

// get decodes the value at key into v; found is false when the key does not exist.
func get(ctx context.Context, rdb redis.Cmdable, key string, v interface{}) (found bool, err error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "getting "+key)
	}
	return true, errors.Wrap(json.Unmarshal(data, v), "decoding "+key)
}

// expire restarts the ttl of key, or makes it persistent for a zero ttl.
func expire(ctx context.Context, rdb redis.Cmdable, key string, ttl time.Duration) (found bool, err error) {
	if ttl <= 0 {
		_, err = rdb.Persist(ctx, key).Result()
		if err != nil {
			return false, errors.Wrap(err, "persisting "+key)
		}
		n, err := rdb.Exists(ctx, key).Result()
		return n > 0, errors.Wrap(err, "checking "+key)
	}
	found, err = rdb.Expire(ctx, key, ttl).Result()
	return found, errors.Wrap(err, "expiring "+key)
}

func del(ctx context.Context, rdb redis.Cmdable, key string) (found bool, err error) {
	n, err := rdb.Del(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "deleting "+key)
	}
	return n > 0, nil
}

// sessionRepository

type sessionRepository struct {
	rdb redis.Cmdable
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(rdb redis.Cmdable) session.Repository {
	return &sessionRepository{rdb: rdb}
}

func (repo *sessionRepository) SaveSession(ctx context.Context, s session.Session, ttl time.Duration) error {
	return set(ctx, repo.rdb, sessionPrefix+s.ID, s, ttl)
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	var s session.Session
	found, err := get(ctx, repo.rdb, sessionPrefix+id, &s)
	if err != nil {
		return session.Session{}, err
	}
	if !found {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (repo *sessionRepository) TouchSession(ctx context.Context, id string, ttl time.Duration) error {
	found, err := expire(ctx, repo.rdb, sessionPrefix+id, ttl)
	if err != nil {
		return err
	}
	if !found {
		return session.ErrNotFound
	}
	return nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	found, err := del(ctx, repo.rdb, sessionPrefix+id)
	if err != nil {
		return err
	}
	if !found {
		return session.ErrNotFound
	}
	return nil
}

// viewRepository

type viewRepository struct {
	rdb redis.Cmdable
}

var _ dashboard.Repository = (*viewRepository)(nil)

func NewViewRepository(rdb redis.Cmdable) dashboard.Repository {
	return &viewRepository{rdb: rdb}
}

func (repo *viewRepository) SaveView(ctx context.Context, sessionID string, v dashboard.ViewState, ttl time.Duration) error {
	return set(ctx, repo.rdb, viewPrefix+sessionID, v, ttl)
}

func (repo *viewRepository) GetView(ctx context.Context, sessionID string) (dashboard.ViewState, error) {
	var v dashboard.ViewState
	found, err := get(ctx, repo.rdb, viewPrefix+sessionID, &v)
	if err != nil {
		return dashboard.ViewState{}, err
	}
	if !found {
		return dashboard.ViewState{}, dashboard.ErrNotFound
	}
	return v, nil
}

func (repo *viewRepository) TouchView(ctx context.Context, sessionID string, ttl time.Duration) error {
	found, err := expire(ctx, repo.rdb, viewPrefix+sessionID, ttl)
	if err != nil {
		return err
	}
	if !found {
		return dashboard.ErrNotFound
	}
	return nil
}

func (repo *viewRepository) DeleteView(ctx context.Context, sessionID string) error {
	found, err := del(ctx, repo.rdb, viewPrefix+sessionID)
	if err != nil {
		return err
	}
	if !found {
		return dashboard.ErrNotFound
	}
	return nil
}
