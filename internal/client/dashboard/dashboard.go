// Package dashboard connects the session manager, the auth gate and the
// project store the way the dashboard screen uses them.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/client/gate"
	"github.com/GoSim-25-26J-441/eprod/internal/client/projectstore"
	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
	"github.com/GoSim-25-26J-441/eprod/internal/logging"
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// ErrStoreNotReady is returned when the project store is not yet bound to
// the signed-in principal.
var ErrStoreNotReady = errors.New("project store not bound to the current principal")

type Dashboard struct {
	sessions *session.Manager
	gate     *gate.Gate
	store    *projectstore.Store
	gen      Generator
	logger   *zap.Logger
	now      func() time.Time

	syncMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New wires the components. A nil generator uses PlaceholderGenerator.
func New(sessions *session.Manager, store *projectstore.Store, policy gate.Policy, gen Generator, logger *zap.Logger) *Dashboard {
	if gen == nil {
		gen = PlaceholderGenerator{}
	}
	return &Dashboard{
		sessions: sessions,
		gate:     gate.New(sessions, policy),
		store:    store,
		gen:      gen,
		logger:   logging.OrNop(logger).Named("dashboard"),
		now:      time.Now,
	}
}

// Start runs the initial session check, loads the principal's projects and
// then follows session changes until Close.
func (d *Dashboard) Start(ctx context.Context) error {
	err := d.sessions.Start(ctx)
	if err != nil {
		d.logger.Warn("session check failed", zap.Error(err))
	}
	if serr := d.sync(ctx); serr != nil {
		d.logger.Warn("initial project fetch failed", zap.Error(serr))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel == nil {
		watchCtx, cancel := context.WithCancel(context.Background())
		d.cancel = cancel
		d.done = make(chan struct{})
		go d.watch(watchCtx, d.done)
	}
	return err
}

// Close stops following session changes and releases the store.
func (d *Dashboard) Close() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	d.store.Close()
}

func (d *Dashboard) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	updates, unsubscribe := d.sessions.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := d.sync(ctx); err != nil && ctx.Err() == nil {
				d.logger.Warn("project sync failed", zap.Error(err))
			}
		}
	}
}

// sync binds the store to the current principal and fetches its
// projects. Nothing happens if the store is already bound to it. The
// session is read under syncMu, so a late caller never rebinds the store
// to a principal that has since signed out.
func (d *Dashboard) sync(ctx context.Context) error {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()

	snap := d.sessions.Snapshot()

	if !snap.SignedIn() {
		if snap.State == session.Unauthenticated && d.store.Owner() != "" {
			d.store.Reset(nil)
		}
		return nil
	}
	if d.store.Owner() == snap.Principal.ID {
		return nil
	}
	d.store.Reset(snap.Principal)
	_, err := d.store.FetchAll(ctx)
	return err
}

// Session returns the current session state.
func (d *Dashboard) Session() session.Snapshot {
	return d.sessions.Snapshot()
}

// PromptRequired reports whether the sign-in form must be shown.
func (d *Dashboard) PromptRequired() bool {
	return d.gate.PromptRequired()
}

func (d *Dashboard) SignIn(ctx context.Context, email, password string) (*authdomain.Principal, error) {
	p, err := d.sessions.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p, d.sync(ctx)
}

func (d *Dashboard) SignUp(ctx context.Context, email, password, displayName string) (*authdomain.Principal, error) {
	p, err := d.sessions.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return p, d.sync(ctx)
}

// SignOut always leaves the dashboard signed out with an empty store.
func (d *Dashboard) SignOut(ctx context.Context) {
	d.sessions.SignOut(ctx)
	_ = d.sync(ctx)
}

func (d *Dashboard) UpdateProfile(ctx context.Context, patch authdomain.ProfilePatch) (*authdomain.Profile, error) {
	return d.sessions.UpdateProfile(ctx, patch)
}

// authorize checks the gate at call time and that the store serves the
// principal the decision was made for.
func (d *Dashboard) authorize(access gate.Access) error {
	snap, err := d.gate.Check(access)
	if err != nil {
		return err
	}
	if d.store.Owner() != snap.Principal.ID {
		return ErrStoreNotReady
	}
	return nil
}

// Projects returns the cached projects in display order.
func (d *Dashboard) Projects() (projectstore.Snapshot, error) {
	if err := d.authorize(gate.Read); err != nil {
		return projectstore.Snapshot{}, err
	}
	return d.store.Snapshot(), nil
}

func (d *Dashboard) Refresh(ctx context.Context) ([]domain.Project, error) {
	if err := d.authorize(gate.Read); err != nil {
		return nil, err
	}
	return d.store.FetchAll(ctx)
}

func (d *Dashboard) Create(ctx context.Context, draft domain.Draft) (*domain.Project, error) {
	if err := d.authorize(gate.Write); err != nil {
		return nil, err
	}
	return d.store.Create(ctx, draft)
}

func (d *Dashboard) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	if err := d.authorize(gate.Write); err != nil {
		return nil, err
	}
	return d.store.Update(ctx, id, patch)
}

func (d *Dashboard) Rename(ctx context.Context, id, title string) (*domain.Project, error) {
	return d.Update(ctx, id, domain.Patch{Title: &title})
}

func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.authorize(gate.Write); err != nil {
		return err
	}
	return d.store.Delete(ctx, id)
}

// Generate produces an image for the draft's prompt and saves the project
// with the resulting reference.
func (d *Dashboard) Generate(ctx context.Context, draft domain.Draft) (*domain.Project, error) {
	draft = draft.Normalize(d.now())
	if err := draft.Validate(); err != nil {
		return nil, &projectstore.StoreError{Op: "generate", Kind: projectstore.ErrValidation, Err: err}
	}
	if err := d.authorize(gate.Write); err != nil {
		return nil, err
	}

	ref, err := d.gen.Generate(ctx, draft.Prompt, draft.SourceImageRefs)
	if err != nil {
		d.logger.Warn("generation failed", zap.Error(err))
		return nil, err
	}
	draft.GeneratedImageRef = &ref
	return d.Create(ctx, draft)
}

// Stats are the counters shown above the project list.
type Stats struct {
	Total      int
	WithImages int
	ThisMonth  int
}

func (d *Dashboard) Stats() (Stats, error) {
	snap, err := d.Projects()
	if err != nil {
		return Stats{}, err
	}
	now := d.now()
	var st Stats
	for _, it := range snap.Items {
		st.Total++
		if it.GeneratedImageRef != nil && *it.GeneratedImageRef != "" {
			st.WithImages++
		}
		if it.CreatedAt.Year() == now.Year() && it.CreatedAt.Month() == now.Month() {
			st.ThisMonth++
		}
	}
	return st, nil
}
