// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/volantvm/bridgectl/internal/eventbus"
)

// Bus is an in-process event bus. Slow subscribers miss events rather than
// stalling publishers.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]chan<- any
}

var _ eventbus.Bus = (*Bus)(nil)

func New() *Bus {
	return &Bus{topics: make(map[string][]chan<- any)}
}

// Publish offers payload to every subscriber of topic without blocking.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.topics[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers ch for topic. The returned func is safe to call more
// than once.
func (b *Bus) Subscribe(topic string, ch chan<- any) (func(), error) {
	if ch == nil {
		return nil, errors.New("eventbus: channel must not be nil")
	}
	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], ch)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.topics[topic]
			for i := range subs {
				if subs[i] == ch {
					b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
		})
	}, nil
}
