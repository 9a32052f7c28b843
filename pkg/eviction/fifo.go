package eviction

// fifo evicts in insertion order. Removal only drops membership; the queue
// may retain stale keys, which EvictionCandidate skips over lazily.
type fifo struct {
	queue   []string
	members map[string]struct{}
}

func newFIFO() *fifo {
	return &fifo{members: make(map[string]struct{})}
}

// OnAccess is a no-op; FIFO ignores reads.
func (f *fifo) OnAccess(string) {}

// OnAdd enqueues the key once. A second insertion of a live key does not
// push it to the back.
func (f *fifo) OnAdd(key string) {
	if _, ok := f.members[key]; ok {
		return
	}
	f.queue = append(f.queue, key)
	f.members[key] = struct{}{}
}

func (f *fifo) OnRemove(key string) {
	delete(f.members, key)
}

// EvictionCandidate pops stale queue heads until it finds a key that is
// still a member, then returns it without consuming it.
func (f *fifo) EvictionCandidate() (string, bool) {
	for len(f.queue) > 0 {
		head := f.queue[0]
		if _, ok := f.members[head]; ok {
			return head, true
		}
		f.queue = f.queue[1:]
	}
	return "", false
}

func (f *fifo) Clear() {
	f.queue = nil
	f.members = make(map[string]struct{})
}

func (f *fifo) Len() int {
	return len(f.members)
}
