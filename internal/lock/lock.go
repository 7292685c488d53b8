// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lock guards a document against concurrent jobs. The in-process
// implementation serves a single bot; the Redis implementation is shared by
// several bot replicas.
package lock

import (
	"context"
	"sync"
	"time"
)

// Locker acquires and releases named locks. Acquire reports false without
// error when another holder owns the name.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// Memory is an in-process Locker. Expired entries are reclaimed on the next
// Acquire of the same name.
type Memory struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewMemory returns an empty in-process Locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]time.Time), clock: time.Now}
}

// Acquire takes name for ttl. A ttl <= 0 never expires.
func (m *Memory) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if exp, ok := m.held[name]; ok && (exp.IsZero() || now.Before(exp)) {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	m.held[name] = exp
	return true, nil
}

// Release frees name. Releasing a free name is a no-op.
func (m *Memory) Release(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}
