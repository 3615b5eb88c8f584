package engine

import "sync"

// UpdateQueue holds the re-run callbacks of reactive bindings, keyed by
// binding identity so re-processing a node replaces its callback rather
// than stacking duplicates. Flush ordering is unspecified.
type UpdateQueue struct {
	mu        sync.Mutex
	callbacks map[*Binding]func()
}

func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{callbacks: make(map[*Binding]func())}
}

// Add enrolls or replaces the callback for a binding.
func (q *UpdateQueue) Add(b *Binding, fn func()) {
	if b == nil || fn == nil {
		return
	}
	q.mu.Lock()
	q.callbacks[b] = fn
	q.mu.Unlock()
}

// Remove drops a binding's callback. Safe to call for bindings that
// never enrolled.
func (q *UpdateQueue) Remove(b *Binding) {
	q.mu.Lock()
	delete(q.callbacks, b)
	q.mu.Unlock()
}

// Flush runs every enrolled callback once. Callbacks stay enrolled so
// the next state change can flush them again. The callback list is
// snapshotted first; callbacks may remove themselves or others.
func (q *UpdateQueue) Flush() {
	q.mu.Lock()
	snapshot := make([]func(), 0, len(q.callbacks))
	for _, fn := range q.callbacks {
		snapshot = append(snapshot, fn)
	}
	q.mu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}

// Len reports the number of enrolled bindings.
func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.callbacks)
}
