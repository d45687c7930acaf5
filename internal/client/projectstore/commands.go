package projectstore

import (
	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

// command is an optimistic mutation. apply runs when the call starts and
// again on top of every fetch that lands while it is in flight; revert
// undoes the latest apply; commit installs the confirmed record.
type command interface {
	apply(c *cache)
	revert(c *cache)
	commit(c *cache, confirmed *domain.Project)
}

type createCmd struct {
	tempID  string
	project domain.Project
}

func (cmd *createCmd) apply(c *cache) {
	if c.index(cmd.tempID) >= 0 {
		return
	}
	// New records go to the head, so never sort behind the current head.
	if len(c.entries) > 0 && c.entries[0].project.CreatedAt.After(cmd.project.CreatedAt) {
		cmd.project.CreatedAt = c.entries[0].project.CreatedAt
		cmd.project.UpdatedAt = cmd.project.CreatedAt
	}
	c.insertSorted(entry{project: cmd.project.Clone(), pending: true, seq: c.nextSeq()})
}

func (cmd *createCmd) revert(c *cache) {
	if i := c.index(cmd.tempID); i >= 0 {
		c.remove(i)
	}
}

// commit swaps the temporary entry for the confirmed one in place. If a
// fetch already brought the confirmed record in, the temporary entry is
// dropped instead so the id stays unique.
func (cmd *createCmd) commit(c *cache, confirmed *domain.Project) {
	tmp := c.index(cmd.tempID)
	if existing := c.index(confirmed.ID); existing >= 0 {
		c.entries[existing].project = confirmed.Clone()
		c.entries[existing].pending = false
		if tmp >= 0 {
			c.remove(tmp)
		}
		c.fixOrder()
		return
	}
	if tmp < 0 {
		c.insertSorted(entry{project: confirmed.Clone(), seq: c.nextSeq()})
		return
	}
	c.entries[tmp].project = confirmed.Clone()
	c.entries[tmp].pending = false
	c.fixOrder()
}

type updateCmd struct {
	id    string
	patch domain.Patch

	applied      bool
	prior        domain.Project
	priorPending bool
}

func (cmd *updateCmd) apply(c *cache) {
	i := c.index(cmd.id)
	if i < 0 {
		cmd.applied = false
		return
	}
	e := &c.entries[i]
	cmd.applied = true
	cmd.prior = e.project.Clone()
	cmd.priorPending = e.pending
	e.project = cmd.patch.ApplyTo(e.project)
	e.pending = true
}

func (cmd *updateCmd) revert(c *cache) {
	if !cmd.applied {
		return
	}
	if i := c.index(cmd.id); i >= 0 {
		c.entries[i].project = cmd.prior.Clone()
		c.entries[i].pending = cmd.priorPending
	}
}

func (cmd *updateCmd) commit(c *cache, confirmed *domain.Project) {
	i := c.index(cmd.id)
	if i < 0 {
		return
	}
	c.entries[i].project = confirmed.Clone()
	c.entries[i].pending = false
	c.fixOrder()
}

type deleteCmd struct {
	id string

	removed *entry
	index   int
}

func (cmd *deleteCmd) apply(c *cache) {
	i := c.index(cmd.id)
	if i < 0 {
		cmd.removed = nil
		return
	}
	e := c.remove(i)
	cmd.removed = &e
	cmd.index = i
}

func (cmd *deleteCmd) revert(c *cache) {
	if cmd.removed == nil || c.index(cmd.id) >= 0 {
		return
	}
	c.restoreAt(cmd.index, *cmd.removed)
}

func (cmd *deleteCmd) commit(c *cache, _ *domain.Project) {
	if i := c.index(cmd.id); i >= 0 {
		c.remove(i)
	}
}
