package grader

import "sync"

// KeyPool rotates across a set of API credentials so that a rate-limited
// key does not stall grading. Next is safe for concurrent use.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

func NewKeyPool(keys []string) *KeyPool {
	cp := make([]string, len(keys))
	copy(cp, keys)
	return &KeyPool{keys: cp}
}

// Next returns the next key in round-robin order, or "" when the pool
// is empty.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	k := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return k
}

func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
