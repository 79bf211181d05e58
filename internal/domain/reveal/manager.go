package reveal

import (
	"sync"

	"github.com/rs/zerolog"
)

// Manager keeps one engine per room.
type Manager struct {
	cfg  Config
	seen SeenStore
	log  zerolog.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager builds a manager sharing one seen-set across rooms.
func NewManager(cfg Config, seen SeenStore, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		seen:    seen,
		log:     log,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the engine for roomID, creating it on first use.
func (m *Manager) Engine(roomID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, ok := m.engines[roomID]
	if !ok {
		eng = NewEngine(m.cfg, m.seen, m.log)
		m.engines[roomID] = eng
	}
	return eng
}

// Release cancels any reveal in progress for roomID and drops the engine.
func (m *Manager) Release(roomID string) {
	m.mu.Lock()
	eng, ok := m.engines[roomID]
	if ok {
		delete(m.engines, roomID)
	}
	m.mu.Unlock()
	if ok {
		eng.Cancel()
	}
}
