// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"sync"
)

// InProc is a PubSub implementation that fans out published messages
// to subscribers of the same process, synchronously. It backs tests
// and single-host swarms where every agent's connector runs in the
// same binary.
type InProc struct {
	mu   sync.RWMutex
	subs map[string]map[int]Handler
	next int
}

// NewInProc returns an empty in-process broker.
func NewInProc() *InProc {
	return &InProc{subs: make(map[string]map[int]Handler)}
}

func (b *InProc) Publish(_ context.Context, topic string, data []byte) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	msg := Message{Topic: topic, Data: data}
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *InProc) Subscribe(_ context.Context, topic string, h Handler) (Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}, nil
}

// Lookup is a no-op for the in-process broker: there is exactly one
// process, so every peer is already reachable.
func (b *InProc) Lookup(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}
