package pool

// waitEntry is the wake handle for consumers waiting on one event name.
// ready is closed by signal and replaced with a fresh channel, so every
// waiter that captured the old channel wakes exactly once.
type waitEntry struct {
	waiters int
	ready   chan struct{}
}

// registry maps event names to their wait handles. It is not safe for
// concurrent use; the pool guards it with its own mutex.
type registry struct {
	entries map[string]*waitEntry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*waitEntry)}
}

// join registers one more waiter for eventName, creating the entry lazily.
func (r *registry) join(eventName string) *waitEntry {
	entry, ok := r.entries[eventName]
	if !ok {
		entry = &waitEntry{ready: make(chan struct{})}
		r.entries[eventName] = entry
	}
	entry.waiters++
	return entry
}

// leave drops one waiter for eventName. The entry stays until cleanup.
func (r *registry) leave(eventName string) {
	if entry, ok := r.entries[eventName]; ok && entry.waiters > 0 {
		entry.waiters--
	}
}

// signal wakes every waiter currently registered for eventName.
func (r *registry) signal(eventName string) {
	entry, ok := r.entries[eventName]
	if !ok {
		return
	}
	close(entry.ready)
	entry.ready = make(chan struct{})
}

// cleanup purges entries nobody is waiting on anymore.
func (r *registry) cleanup() {
	for name, entry := range r.entries {
		if entry.waiters == 0 {
			delete(r.entries, name)
		}
	}
}

func (r *registry) size() int {
	return len(r.entries)
}

func (r *registry) waiting() map[string]int {
	out := make(map[string]int, len(r.entries))
	for name, entry := range r.entries {
		out[name] = entry.waiters
	}
	return out
}
