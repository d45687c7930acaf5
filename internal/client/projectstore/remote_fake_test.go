package projectstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

type hold struct {
	entered chan struct{}
	release chan struct{}
}

// fakeRemote is an in-memory remote store with hooks to fail or pause calls.
type fakeRemote struct {
	mu    sync.Mutex
	clock time.Time
	seq   int
	rows  map[string]domain.Project
	fails map[string]error
	holds map[string][]*hold
	calls map[string]int

	// ignoreOwner makes Select return every row, as an unscoped query would.
	ignoreOwner bool
	// ownerOverride, when set, replaces the owner of records Insert and
	// Update return.
	ownerOverride string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		clock: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		rows:  map[string]domain.Project{},
		fails: map[string]error{},
		holds: map[string][]*hold{},
		calls: map[string]int{},
	}
}

func (r *fakeRemote) hold(op string) *hold {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	r.mu.Lock()
	r.holds[op] = append(r.holds[op], h)
	r.mu.Unlock()
	return h
}

func (r *fakeRemote) failOn(op string, err error) {
	r.mu.Lock()
	r.fails[op] = err
	r.mu.Unlock()
}

func (r *fakeRemote) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeRemote) seed(p domain.Project) {
	r.mu.Lock()
	r.rows[p.ID] = p
	r.mu.Unlock()
}

func (r *fakeRemote) enter(ctx context.Context, op string) error {
	r.mu.Lock()
	r.calls[op]++
	var h *hold
	if q := r.holds[op]; len(q) > 0 {
		h, r.holds[op] = q[0], q[1:]
	}
	r.mu.Unlock()

	if h != nil {
		close(h.entered)
		select {
		case <-h.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fails[op]
}

func (r *fakeRemote) Select(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if err := r.enter(ctx, "select"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Project{}
	for _, p := range r.rows {
		if r.ignoreOwner || p.OwnerID == ownerID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRemote) Insert(ctx context.Context, ownerID string, d domain.Draft) (*domain.Project, error) {
	if err := r.enter(ctx, "insert"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.clock = r.clock.Add(time.Minute)
	if r.ownerOverride != "" {
		ownerID = r.ownerOverride
	}
	p := d.Project(fmt.Sprintf("srv-%d", r.seq), ownerID, r.clock)
	r.rows[p.ID] = p
	out := p.Clone()
	return &out, nil
}

func (r *fakeRemote) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	if err := r.enter(ctx, "update"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = patch.ApplyTo(p)
	p.UpdatedAt = r.clock.Add(time.Second)
	r.rows[id] = p
	out := p.Clone()
	if r.ownerOverride != "" {
		out.OwnerID = r.ownerOverride
	}
	return &out, nil
}

func (r *fakeRemote) Delete(ctx context.Context, id string) error {
	if err := r.enter(ctx, "delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
