// internal/worker/pool.go
package worker

import "sync"

// Task computes one result, e.g. the analytics snapshot for one student.
type Task[T any] func() T

// Result pairs a task's output with the key it was submitted under.
type Result[T any] struct {
	Key    string
	Output T
}

// Pool fans tasks out to a fixed number of goroutines. The digest
// pipeline uses it to aggregate per-student analytics concurrently.
type Pool[T any] struct {
	tasks   chan taskWrapper[T]
	results chan Result[T]
	wg      sync.WaitGroup
}

type taskWrapper[T any] struct {
	key string
	fn  Task[T]
}

func NewPool[T any](workers, buffer int) *Pool[T] {
	p := &Pool[T]{
		tasks:   make(chan taskWrapper[T], buffer),
		results: make(chan Result[T], buffer),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.results <- Result[T]{Key: t.key, Output: t.fn()}
	}
}

func (p *Pool[T]) Submit(key string, fn Task[T]) {
	p.tasks <- taskWrapper[T]{key: key, fn: fn}
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close signals that no more tasks will be submitted and closes the
// results channel once in-flight tasks finish. Ranging over Results()
// then terminates cleanly.
func (p *Pool[T]) Close() {
	close(p.tasks)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Collect is a convenience for batch callers: submit everything, close,
// and gather all results into a map keyed by submission key.
func Collect[T any](workers int, tasks map[string]Task[T]) map[string]T {
	if len(tasks) == 0 {
		return map[string]T{}
	}
	pool := NewPool[T](workers, len(tasks))
	for key, fn := range tasks {
		pool.Submit(key, fn)
	}
	pool.Close()

	out := make(map[string]T, len(tasks))
	for res := range pool.Results() {
		out[res.Key] = res.Output
	}
	return out
}
