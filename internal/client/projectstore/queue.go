package projectstore

import "context"

// idQueue serializes mutations on one project id in call order. Each
// holder waits for the previous holder's done channel.
type idQueue struct {
	key     string
	tail    chan struct{}
	holders int
}

type ticket struct {
	q    *idQueue
	prev chan struct{}
	done chan struct{}
}

// enqueueLocked joins the queue for key. Callers hold s.mu.
func (s *Store) enqueueLocked(key string) *ticket {
	q, ok := s.queues[key]
	if !ok {
		q = &idQueue{key: key}
		s.queues[key] = q
	}
	t := &ticket{q: q, prev: q.tail, done: make(chan struct{})}
	q.tail = t.done
	q.holders++
	return t
}

// wait blocks until every earlier holder has released. If ctx ends first
// the ticket is handed on in the background so later holders still run.
func (s *Store) wait(ctx context.Context, t *ticket) error {
	if t.prev == nil {
		return nil
	}
	select {
	case <-t.prev:
		return nil
	case <-ctx.Done():
		go func() {
			<-t.prev
			s.release(t)
		}()
		return ctx.Err()
	}
}

func (s *Store) release(t *ticket) {
	close(t.done)

	s.mu.Lock()
	defer s.mu.Unlock()
	t.q.holders--
	if t.q.holders == 0 && s.queues[t.q.key] == t.q {
		delete(s.queues, t.q.key)
	}
}

// rekeyLocked moves the queue of a temporary id to the confirmed id so
// mutations queued behind a create keep their place.
func (s *Store) rekeyLocked(from, to string) {
	q, ok := s.queues[from]
	if !ok {
		return
	}
	if _, taken := s.queues[to]; taken {
		return
	}
	delete(s.queues, from)
	q.key = to
	s.queues[to] = q
}
