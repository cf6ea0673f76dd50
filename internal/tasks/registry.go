package tasks

import (
	"context"
	"sync"
)

type entry struct {
	seq    uint64
	cancel context.CancelFunc
}

// Registry tracks the live task for each intent.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]entry)}
}

// Begin registers task seq for intent and returns its context. Any earlier task for the same intent is canceled.
func (r *Registry) Begin(parent context.Context, intent string, seq uint64) context.Context {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.tasks[intent]; ok {
		prev.cancel()
	}
	r.tasks[intent] = entry{seq: seq, cancel: cancel}
	return ctx
}

// Done releases task seq. It is a no-op when seq has already been superseded.
func (r *Registry) Done(intent string, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.tasks[intent]; ok && cur.seq == seq {
		cur.cancel()
		delete(r.tasks, intent)
	}
}

// Cancel cancels the live task for intent, if any.
func (r *Registry) Cancel(intent string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.tasks[intent]; ok {
		cur.cancel()
		delete(r.tasks, intent)
	}
}

// CancelAll cancels every live task.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for intent, cur := range r.tasks {
		cur.cancel()
		delete(r.tasks, intent)
	}
}

// Live reports whether seq is the current task for intent.
func (r *Registry) Live(intent string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tasks[intent]
	return ok && cur.seq == seq
}

// Len returns the number of live tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
