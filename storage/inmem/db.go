package inmemstore

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
)

type (
	// DB is a thread-safe in-memory store of sessions and their views.
	// Expired entries are hidden on read and dropped by Evict.
	DB struct {
		session *table
		view    *table
		now     func() time.Time // mockable
	}

	table struct {
		t     map[string]entry
		mutex sync.RWMutex
	}

	entry struct {
		value     interface{}
		expiresAt time.Time // zero: never
	}
)

func Open() *DB {
	return &DB{
		session: &table{t: make(map[string]entry)},
		view:    &table{t: make(map[string]entry)},
		now:     time.Now,
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (db *DB) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return db.now().Add(ttl)
}

func (tbl *table) get(key string, now time.Time) (interface{}, bool) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	e, ok := tbl.t[key]
	if !ok || e.expired(now) {
		return nil, false
	}
	return e.value, true
}

func (tbl *table) put(key string, e entry) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()
	tbl.t[key] = e
}

// touch moves the expiry of a live entry; false when there is none.
func (tbl *table) touch(key string, now, expiresAt time.Time) bool {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	e, ok := tbl.t[key]
	if !ok || e.expired(now) {
		return false
	}
	e.expiresAt = expiresAt
	tbl.t[key] = e
	return true
}

func (tbl *table) delete(key string) bool {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	_, ok := tbl.t[key]
	delete(tbl.t, key)
	return ok
}

func (tbl *table) evict(now time.Time) int {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	removed := 0
	for k, e := range tbl.t {
		if e.expired(now) {
			delete(tbl.t, k)
			removed++
		}
	}
	return removed
}

// Evict removes the entries expired at `now` and returns how many were removed.
func (db *DB) Evict(now time.Time) int {
	return db.session.evict(now) + db.view.evict(now)
}

// Run evicts expired entries every `interval` until ctx is cancelled.
func (db *DB) Run(ctx context.Context, interval time.Duration) {
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			db.Evict(now)
		}
	}
}

// Close is a no-op; it lets DB stand in for any store.
func (db *DB) Close() error {
	return nil
}

// sessionRepository

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) SaveSession(_ context.Context, s session.Session, ttl time.Duration) error {
	repo.db.session.put(s.ID, entry{value: s, expiresAt: repo.db.expiry(ttl)})
	return nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Session, error) {
	if v, ok := repo.db.session.get(id, repo.db.now()); ok {
		return v.(session.Session), nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) TouchSession(_ context.Context, id string, ttl time.Duration) error {
	if !repo.db.session.touch(id, repo.db.now(), repo.db.expiry(ttl)) {
		return session.ErrNotFound
	}
	return nil
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	if !repo.db.session.delete(id) {
		return session.ErrNotFound
	}
	return nil
}

// viewRepository

type viewRepository struct {
	db *DB
}

var _ dashboard.Repository = (*viewRepository)(nil)

func NewViewRepository(db *DB) dashboard.Repository {
	return &viewRepository{db: db}
}

func (repo *viewRepository) SaveView(_ context.Context, sessionID string, v dashboard.ViewState, ttl time.Duration) error {
	repo.db.view.put(sessionID, entry{value: v, expiresAt: repo.db.expiry(ttl)})
	return nil
}

func (repo *viewRepository) GetView(_ context.Context, sessionID string) (dashboard.ViewState, error) {
	if v, ok := repo.db.view.get(sessionID, repo.db.now()); ok {
		return v.(dashboard.ViewState), nil
	}
	return dashboard.ViewState{}, dashboard.ErrNotFound
}

func (repo *viewRepository) TouchView(_ context.Context, sessionID string, ttl time.Duration) error {
	if !repo.db.view.touch(sessionID, repo.db.now(), repo.db.expiry(ttl)) {
		return dashboard.ErrNotFound
	}
	return nil
}

func (repo *viewRepository) DeleteView(_ context.Context, sessionID string) error {
	if !repo.db.view.delete(sessionID) {
		return dashboard.ErrNotFound
	}
	return nil
}
