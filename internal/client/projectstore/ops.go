package projectstore

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// FetchAll replaces the cache with the principal's projects. Concurrent
// calls for the same principal and session share one remote request.
// Mutations still in flight are re-applied on top of the result.
func (s *Store) FetchAll(ctx context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	owner, epoch, epochCtx := s.owner, s.epoch, s.epochCtx
	s.mu.Unlock()

	if owner == "" {
		return nil, &StoreError{Op: "fetch", Kind: ErrUnauthorized, Err: errNoPrincipal}
	}

	key := owner + "#" + strconv.FormatUint(epoch, 10)
	ch := s.fetches.DoChan(key, func() (any, error) {
		return s.fetch(epochCtx, owner, epoch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		items := res.Val.([]domain.Project)
		out := make([]domain.Project, len(items))
		for i, p := range items {
			out[i] = p.Clone()
		}
		return out, nil
	case <-ctx.Done():
		return nil, &StoreError{Op: "fetch", Kind: ErrNetwork, Err: ctx.Err()}
	}
}

func (s *Store) fetch(epochCtx context.Context, owner string, epoch uint64) ([]domain.Project, error) {
	s.mu.Lock()
	// Reset already cleared loading for the new epoch; leave it alone.
	if s.epoch != epoch {
		s.mu.Unlock()
		return nil, &StoreError{Op: "fetch", Kind: ErrUnauthorized, Err: errSessionChanged}
	}
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.notifyLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(epochCtx, s.timeout)
	defer cancel()
	items, err := s.remote.Select(ctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Debug("discarding fetch from previous session", zap.String("owner", owner))
		return nil, &StoreError{Op: "fetch", Kind: ErrUnauthorized, Err: errSessionChanged}
	}
	if seq != s.fetchSeq {
		s.logger.Debug("discarding superseded fetch", zap.Uint64("seq", seq))
		return nil, &StoreError{Op: "fetch", Kind: ErrNetwork, Err: context.Canceled}
	}
	s.loading = false

	if err != nil {
		s.notifyLocked()
		s.logger.Warn("fetch failed", zap.String("owner", owner), zap.Error(err))
		return nil, classify("fetch", "", err)
	}

	own := make([]domain.Project, 0, len(items))
	for _, p := range items {
		if p.OwnerID != owner {
			s.logger.Warn("dropping project of another owner",
				zap.String("project_id", p.ID), zap.String("owner", owner))
			continue
		}
		own = append(own, p)
	}

	s.cache.replace(own)
	for _, cmd := range s.inflight {
		cmd.apply(&s.cache)
	}
	s.notifyLocked()

	out := make([]domain.Project, len(s.cache.entries))
	for i, e := range s.cache.entries {
		out[i] = e.project.Clone()
	}
	return out, nil
}

// Create inserts the draft at the head of the cache under a temporary id,
// then swaps in the confirmed record or removes it again on failure.
func (s *Store) Create(ctx context.Context, draft domain.Draft) (*domain.Project, error) {
	draft = draft.Normalize(s.now())
	if err := draft.Validate(); err != nil {
		return nil, &StoreError{Op: "create", Kind: ErrValidation, Err: err}
	}
	tempID, err := s.newID()
	if err != nil {
		return nil, &StoreError{Op: "create", Kind: ErrValidation, Err: err}
	}

	s.mu.Lock()
	owner, epoch := s.owner, s.epoch
	if owner == "" {
		s.mu.Unlock()
		return nil, &StoreError{Op: "create", Kind: ErrUnauthorized, Err: errNoPrincipal}
	}
	t := s.enqueueLocked(tempID)
	cmd := &createCmd{tempID: tempID, project: draft.Project(tempID, owner, s.now())}
	cmd.apply(&s.cache)
	s.inflight = append(s.inflight, cmd)
	s.notifyLocked()
	s.mu.Unlock()
	defer s.release(t)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p, err := s.remote.Insert(callCtx, owner, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropInflightLocked(cmd)

	if s.epoch != epoch {
		if err != nil {
			return nil, classify("create", "", err)
		}
		return p, nil
	}
	if err != nil {
		cmd.revert(&s.cache)
		s.notifyLocked()
		s.logger.Warn("create failed", zap.String("owner", owner), zap.Error(err))
		return nil, classify("create", "", err)
	}
	if p.OwnerID != owner {
		cmd.revert(&s.cache)
		s.notifyLocked()
		s.logger.Warn("remote returned a project of another owner",
			zap.String("project_id", p.ID), zap.String("owner", owner))
		return nil, &StoreError{Op: "create", ID: p.ID, Kind: ErrValidation, Err: errForeignOwner}
	}

	cmd.commit(&s.cache, p)
	s.aliases[tempID] = p.ID
	s.rekeyLocked(tempID, p.ID)
	s.notifyLocked()

	out := p.Clone()
	return &out, nil
}

// Update applies patch to the cached record right away and replaces it
// with the remote's canonical record, or restores it exactly on failure.
// Mutations on the same id run one at a time in call order.
func (s *Store) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, &StoreError{Op: "update", ID: id, Kind: ErrValidation, Err: err}
	}

	owner, epoch, t, err := s.begin(ctx, "update", id)
	if err != nil {
		return nil, err
	}
	defer s.release(t)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return nil, &StoreError{Op: "update", ID: id, Kind: ErrUnauthorized, Err: errSessionChanged}
	}
	id = s.resolveLocked(id)
	if s.cache.index(id) < 0 {
		s.mu.Unlock()
		return nil, &StoreError{Op: "update", ID: id, Kind: ErrNotFound}
	}
	cmd := &updateCmd{id: id, patch: patch}
	cmd.apply(&s.cache)
	s.inflight = append(s.inflight, cmd)
	s.notifyLocked()
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p, err := s.remote.Update(callCtx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropInflightLocked(cmd)

	if s.epoch != epoch {
		if err != nil {
			return nil, classify("update", id, err)
		}
		return p, nil
	}
	if err != nil {
		cmd.revert(&s.cache)
		s.notifyLocked()
		s.logger.Warn("update failed", zap.String("project_id", id), zap.Error(err))
		return nil, classify("update", id, err)
	}
	if p.OwnerID != owner || p.ID != id {
		cmd.revert(&s.cache)
		s.notifyLocked()
		s.logger.Warn("remote returned a mismatched project",
			zap.String("project_id", id), zap.String("owner", owner))
		return nil, &StoreError{Op: "update", ID: id, Kind: ErrValidation, Err: errForeignOwner}
	}

	cmd.commit(&s.cache, p)
	s.notifyLocked()

	out := p.Clone()
	return &out, nil
}

// Delete removes the record right away and puts it back at its original
// position if the remote delete fails.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, epoch, t, err := s.begin(ctx, "delete", id)
	if err != nil {
		return err
	}
	defer s.release(t)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return &StoreError{Op: "delete", ID: id, Kind: ErrUnauthorized, Err: errSessionChanged}
	}
	id = s.resolveLocked(id)
	if s.cache.index(id) < 0 {
		s.mu.Unlock()
		return &StoreError{Op: "delete", ID: id, Kind: ErrNotFound}
	}
	cmd := &deleteCmd{id: id}
	cmd.apply(&s.cache)
	s.inflight = append(s.inflight, cmd)
	s.notifyLocked()
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err = s.remote.Delete(callCtx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropInflightLocked(cmd)

	if s.epoch != epoch {
		if err != nil {
			return classify("delete", id, err)
		}
		return nil
	}
	if err != nil {
		cmd.revert(&s.cache)
		s.notifyLocked()
		s.logger.Warn("delete failed", zap.String("project_id", id), zap.Error(err))
		return classify("delete", id, err)
	}

	cmd.commit(&s.cache, nil)
	s.notifyLocked()
	return nil
}

// begin checks for a principal and waits for the id's earlier mutations.
func (s *Store) begin(ctx context.Context, op, id string) (string, uint64, *ticket, error) {
	s.mu.Lock()
	owner, epoch := s.owner, s.epoch
	if owner == "" {
		s.mu.Unlock()
		return "", 0, nil, &StoreError{Op: op, ID: id, Kind: ErrUnauthorized, Err: errNoPrincipal}
	}
	t := s.enqueueLocked(s.resolveLocked(id))
	s.mu.Unlock()

	if err := s.wait(ctx, t); err != nil {
		return "", 0, nil, &StoreError{Op: op, ID: id, Kind: ErrNetwork, Err: err}
	}
	return owner, epoch, t, nil
}
