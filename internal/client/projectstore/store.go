// Package projectstore keeps a client-side cache of the current principal's
// projects in sync with the remote store. Mutations are applied
// optimistically and rolled back when the remote call fails.
package projectstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/ids"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// Remote is the system of record for projects.
type Remote interface {
	Select(ctx context.Context, ownerID string) ([]domain.Project, error)
	Insert(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// Item is a cached project. Pending is set while a create or update of the
// record has not been confirmed.
type Item struct {
	domain.Project
	Pending bool
}

// Snapshot is an immutable copy of the cache in display order.
type Snapshot struct {
	Owner   string
	Items   []Item
	Loading bool
	Version uint64
}

// Projects returns the cached projects without the pending flags.
func (s Snapshot) Projects() []domain.Project {
	out := make([]domain.Project, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Project.Clone()
	}
	return out
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	remote  Remote
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() (string, error)

	mu       sync.Mutex
	owner    string
	epoch    uint64
	epochCtx context.Context
	cancel   context.CancelFunc
	cache    cache
	inflight []command
	queues   map[string]*idQueue
	aliases  map[string]string
	fetchSeq uint64
	loading  bool
	version  uint64
	subs     map[int]chan Snapshot
	nextSub  int

	fetches singleflight.Group
}

// New returns a store with no principal. Call Reset to bind one.
func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:  remote,
		logger:  zap.NewNop(),
		timeout: 15 * time.Second,
		now:     time.Now,
		newID:   func() (string, error) { return ids.NewID("tmp") },
		queues:  make(map[string]*idQueue),
		aliases: make(map[string]string),
		subs:    make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("projectstore")
	s.epochCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Reset binds the store to principal, or to nobody when principal is nil.
// The cache is cleared and results of calls started before the reset are
// discarded when they arrive.
func (s *Store) Reset(principal *authdomain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.epoch++
	s.epochCtx, s.cancel = context.WithCancel(context.Background())
	s.owner = ""
	if principal != nil {
		s.owner = principal.ID
	}
	s.cache.clear()
	s.inflight = nil
	s.aliases = make(map[string]string)
	s.loading = false
	s.logger.Debug("store reset", zap.String("owner", s.owner), zap.Uint64("epoch", s.epoch))
	s.notifyLocked()
}

// Close releases the store's principal and cancels any fetch in flight.
func (s *Store) Close() {
	s.Reset(nil)
}

// Owner returns the id of the principal the store is bound to.
func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe delivers the current snapshot and then every change. Slow
// readers only see the latest one.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]Item, len(s.cache.entries))
	for i, e := range s.cache.entries {
		items[i] = Item{Project: e.project.Clone(), Pending: e.pending}
	}
	return Snapshot{Owner: s.owner, Items: items, Loading: s.loading, Version: s.version}
}

func (s *Store) notifyLocked() {
	s.version++
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) resolveLocked(id string) string {
	if real, ok := s.aliases[id]; ok {
		return real
	}
	return id
}

func (s *Store) dropInflightLocked(cmd command) {
	s.inflight = slices.DeleteFunc(s.inflight, func(c command) bool { return c == cmd })
}
