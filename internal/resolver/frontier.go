package resolver

import "github.com/StinkyLord/stella/internal/model"

// frontier is the FIFO queue of dependency references still to resolve,
// paired with a lookup set so a reference is never queued twice.
type frontier struct {
	queue  []model.DependencyRef
	queued map[string]bool
}

func newFrontier() *frontier {
	return &frontier{queued: map[string]bool{}}
}

// push appends ref unless a reference with the same identity is already
// waiting. It reports whether ref was queued.
func (f *frontier) push(ref model.DependencyRef) bool {
	if f.queued[ref.Identity] {
		return false
	}
	f.queued[ref.Identity] = true
	f.queue = append(f.queue, ref)
	return true
}

func (f *frontier) pop() model.DependencyRef {
	ref := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, ref.Identity)
	return ref
}

func (f *frontier) has(identity string) bool { return f.queued[identity] }

func (f *frontier) len() int { return len(f.queue) }

// identitySet is the set of resolved identities. It only grows.
type identitySet struct {
	index map[string]bool
}

func newIdentitySet(ids ...string) *identitySet {
	s := &identitySet{index: map[string]bool{}}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *identitySet) add(id string) { s.index[id] = true }

func (s *identitySet) has(id string) bool { return s.index[id] }
