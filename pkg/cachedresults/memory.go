package cachedresults

import (
	"context"
	"sync"

	"github.com/travigo/transferboard/pkg/refresh"
)

type MemoryStore struct {
	mutex  sync.RWMutex
	latest *refresh.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Publish(ctx context.Context, state refresh.State) error {
	snapshot := state.Snapshot()

	m.mutex.Lock()
	m.latest = &snapshot
	m.mutex.Unlock()

	return nil
}

func (m *MemoryStore) Latest(ctx context.Context) (refresh.State, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.latest == nil {
		return refresh.State{}, ErrNoSnapshot
	}

	return m.latest.Snapshot(), nil
}
