// Package catalog holds the topic metadata shown to users: titles,
// descriptions, the modes each topic accepts and its default mode.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

// Registry provides access to loaded topics
type Registry struct {
	loader *Loader
	mu     sync.RWMutex
	topics map[string]*domain.Topic
	loaded bool
}

// NewRegistry creates a new topic registry
func NewRegistry(loader *Loader) *Registry {
	return &Registry{
		loader: loader,
		topics: make(map[string]*domain.Topic),
	}
}

// Load loads all topics into memory
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	topics, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	for _, t := range topics {
		r.topics[t.ID] = t
	}
	r.loaded = true
	return nil
}

// Reload discards and reloads all topics
func (r *Registry) Reload() error {
	r.mu.Lock()
	r.topics = make(map[string]*domain.Topic)
	r.loaded = false
	r.mu.Unlock()

	return r.Load()
}

// Loaded reports whether Load has succeeded
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// GetTopic returns a topic by ID
func (r *Registry) GetTopic(id string) (*domain.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, id)
	}
	return t, nil
}

// ListTopics returns all topics ordered by ID
func (r *Registry) ListTopics() []*domain.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]*domain.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics
}

// ListByTag returns topics that have a specific tag, ordered by ID
func (r *Registry) ListByTag(tag string) []*domain.Topic {
	var out []*domain.Topic
	for _, t := range r.ListTopics() {
		for _, tt := range t.Tags {
			if tt == tag {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Stats returns statistics about loaded topics
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		TopicCount: len(r.topics),
		ByTag:      make(map[string]int),
	}
	for _, t := range r.topics {
		stats.ModeCount += len(t.Modes)
		for _, tag := range t.Tags {
			stats.ByTag[tag]++
		}
	}
	return stats
}

// RegistryStats holds statistics about the registry
type RegistryStats struct {
	TopicCount int
	ModeCount  int
	ByTag      map[string]int
}
