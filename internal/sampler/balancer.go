package sampler

import "sync"

// Quota is the share of one shape in a balancer cycle
type Quota struct {
	Key   string
	Count int
}

// Balancer steers successive draws toward a target distribution of
// shapes. Each cycle hands out every key exactly Count times, in random
// order weighted by the remaining quota, then starts over. A balancer
// belongs to one quiz session.
type Balancer struct {
	mu     sync.Mutex
	quotas []Quota
	used   map[string]int
}

// NewBalancer returns a balancer over quotas. Non-positive counts are ignored.
func NewBalancer(quotas ...Quota) *Balancer {
	var kept []Quota
	for _, q := range quotas {
		if q.Count > 0 {
			kept = append(kept, q)
		}
	}
	return &Balancer{quotas: kept, used: make(map[string]int)}
}

// Next returns the next shape key, or "" for a balancer with no quotas
func (b *Balancer) Next(s *Source) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.quotas) == 0 {
		return ""
	}
	remaining := b.remaining()
	if remaining == 0 {
		clear(b.used)
		remaining = b.remaining()
	}

	n := s.Intn(remaining)
	for _, q := range b.quotas {
		left := q.Count - b.used[q.Key]
		if n < left {
			b.used[q.Key]++
			return q.Key
		}
		n -= left
	}
	// unreachable while remaining counts agree with quotas
	return b.quotas[len(b.quotas)-1].Key
}

func (b *Balancer) remaining() int {
	total := 0
	for _, q := range b.quotas {
		total += q.Count - b.used[q.Key]
	}
	return total
}

// CycleLen returns the number of draws in one full cycle
func (b *Balancer) CycleLen() int {
	total := 0
	for _, q := range b.quotas {
		total += q.Count
	}
	return total
}

// Reset starts a new cycle
func (b *Balancer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.used)
}

// Used returns how often each key was handed out in the current cycle
func (b *Balancer) Used() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]int, len(b.used))
	for k, v := range b.used {
		out[k] = v
	}
	return out
}
