package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory implements Store with an in-process map. Suitable for
// single-instance deployments and tests. A background goroutine removes
// expired entries.
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	nowFunc   func() time.Time
}

// NewMemory creates an in-memory store and starts its cleanup goroutine.
func NewMemory() *Memory {
	m := &Memory{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
		nowFunc:  time.Now,
	}
	m.wg.Add(1)
	go m.cleanupLoop()
	return m
}

func (m *Memory) Get(ctx context.Context, key string) (string, Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.nowFunc().After(e.expiresAt) {
		return "", Miss, nil
	}
	if e.value == "" {
		return "", HitEmpty, nil
	}
	return e.value, HitValue, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: m.nowFunc().Add(ttl)}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
	return nil
}

func (m *Memory) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

var _ Store = (*Memory)(nil)
