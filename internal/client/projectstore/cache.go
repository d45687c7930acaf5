package projectstore

import (
	"sort"

	"github.com/GoSim-25-26J-441/eprod/internal/projects/domain"
)

type entry struct {
	project domain.Project
	pending bool
	// seq is the insertion order; later inserts sort first among equal timestamps.
	seq uint64
}

// before reports whether a is displayed ahead of b.
func before(a, b entry) bool {
	if !a.project.CreatedAt.Equal(b.project.CreatedAt) {
		return a.project.CreatedAt.After(b.project.CreatedAt)
	}
	return a.seq > b.seq
}

// cache is an id-keyed list kept in display order.
type cache struct {
	entries []entry
	seq     uint64
}

func (c *cache) index(id string) int {
	for i := range c.entries {
		if c.entries[i].project.ID == id {
			return i
		}
	}
	return -1
}

func (c *cache) nextSeq() uint64 {
	c.seq++
	return c.seq
}

// insertSorted places e by its order key and returns its index.
func (c *cache) insertSorted(e entry) int {
	i := sort.Search(len(c.entries), func(i int) bool { return before(e, c.entries[i]) })
	c.insertAt(i, e)
	return i
}

func (c *cache) insertAt(i int, e entry) {
	c.entries = append(c.entries, entry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = e
}

// restoreAt puts e back at index i when that keeps the order valid and
// falls back to a sorted insert otherwise.
func (c *cache) restoreAt(i int, e entry) int {
	if i < 0 || i > len(c.entries) {
		return c.insertSorted(e)
	}
	if i > 0 && !before(c.entries[i-1], e) {
		return c.insertSorted(e)
	}
	if i < len(c.entries) && !before(e, c.entries[i]) {
		return c.insertSorted(e)
	}
	c.insertAt(i, e)
	return i
}

func (c *cache) remove(i int) entry {
	e := c.entries[i]
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return e
}

func (c *cache) fixOrder() {
	sort.SliceStable(c.entries, func(i, j int) bool { return before(c.entries[i], c.entries[j]) })
}

// replace swaps the whole content for a fetched result. The result's own
// order decides ties.
func (c *cache) replace(items []domain.Project) {
	c.entries = make([]entry, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		c.entries = append(c.entries, entry{project: items[i].Clone(), seq: c.nextSeq()})
	}
	c.fixOrder()
}

func (c *cache) clear() {
	c.entries = nil
}
