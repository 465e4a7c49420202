package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/player"
	"mini-mc-server/internal/profiling"
	"mini-mc-server/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is told when sessions open and close.
type Observer interface {
	SessionOpened()
	SessionClosed()
}

// ListenerFactory returns a listener attached to every new session's
// window, e.g. an audit trail bound to the player.
type ListenerFactory func(s *Session) inventory.Listener

// Manager owns the open sessions and drives their ticks.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	byPlayer  map[string]*Session
	factories []ListenerFactory

	brewTicks   int
	maxSessions int
	isOperator  func(name string) bool
	windowOpts  []inventory.Option
	observer    Observer

	profiler *profiling.Profiler
	logger   *zap.Logger
}

type ManagerOption func(*Manager)

// WithBrewTicks sets how many ticks a brew takes.
func WithBrewTicks(n int) ManagerOption {
	return func(m *Manager) { m.brewTicks = n }
}

// WithMaxSessions caps concurrent sessions; 0 means unlimited.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

// WithOperators decides which players may run privileged commands.
func WithOperators(fn func(name string) bool) ManagerOption {
	return func(m *Manager) { m.isOperator = fn }
}

// WithWindowOptions passes opts to every window the manager creates.
func WithWindowOptions(opts ...inventory.Option) ManagerOption {
	return func(m *Manager) { m.windowOpts = append(m.windowOpts, opts...) }
}

// WithListenerFactory attaches a listener built by f to every new session.
func WithListenerFactory(f ListenerFactory) ManagerOption {
	return func(m *Manager) { m.factories = append(m.factories, f) }
}

func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) { m.observer = o }
}

func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:   make(map[uuid.UUID]*Session),
		byPlayer:   make(map[string]*Session),
		brewTicks:  inventory.DefaultBrewTicks,
		isOperator: func(string) bool { return false },
		profiler:   profiling.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func playerKey(name string) string { return strings.ToLower(name) }

// Open returns the player's session, creating it with a brewing stand
// window on first use.
func (m *Manager) Open(name string) (*Session, error) {
	return m.OpenKind(name, WindowBrewing)
}

// OpenKind returns the player's session, creating it with a window of the
// given kind on first use. An existing session keeps its window.
func (m *Manager) OpenKind(name string, kind WindowKind) (*Session, error) {
	if name == "" {
		return nil, fmt.Errorf("open session: empty player name")
	}

	m.mu.Lock()
	if s, ok := m.byPlayer[playerKey(name)]; ok {
		m.mu.Unlock()
		return s, nil
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("open session for %s: %w", name, ErrSessionLimit)
	}

	p := player.New(name, player.GameModeSurvival, m.logger)
	p.Operator = m.isOperator(name)
	p.AddStat(stats.StatContainersOpened, 1)
	s := newSession(p, kind, m.brewTicks, m.profiler, m.logger, m.windowOpts...)
	m.sessions[s.ID] = s
	m.byPlayer[playerKey(name)] = s
	m.mu.Unlock()

	for _, f := range m.factories {
		if l := f(s); l != nil {
			if err := s.Window.AddListener(l); err != nil {
				s.logger.Warn("attach listener", zap.Error(err))
			}
		}
	}
	if m.observer != nil {
		m.observer.SessionOpened()
	}
	s.logger.Info("session opened", zap.String("window_kind", string(s.Kind)), zap.Bool("operator", p.Operator))
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// ByPlayer returns the session of the named player, ignoring case.
func (m *Manager) ByPlayer(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byPlayer[playerKey(name)]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", name, ErrSessionNotFound)
	}
	return s, nil
}

// PlayerNames returns the names of online players, sorted.
func (m *Manager) PlayerNames() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.byPlayer))
	for _, s := range m.byPlayer {
		names = append(names, s.Player.Name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes and forgets the session.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		delete(m.byPlayer, playerKey(s.Player.Name))
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("close session %s: %w", id, ErrSessionNotFound)
	}
	s.Close()
	if m.observer != nil {
		m.observer.SessionClosed()
	}
	return nil
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		_ = m.Close(id)
	}
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// TickAll ticks every open session once.
func (m *Manager) TickAll() {
	m.profiler.Reset()
	for _, s := range m.snapshot() {
		if err := s.Tick(); err != nil && !errors.Is(err, ErrSessionClosed) {
			s.logger.Warn("tick failed", zap.Error(err))
		}
	}
}

// Run drives the fixed-rate tick loop until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			m.TickAll()
			if elapsed := time.Since(start); elapsed > interval {
				m.logger.Warn("tick overran",
					zap.Duration("elapsed", elapsed),
					zap.String("top", m.profiler.TopN(3)))
			}
		}
	}
}
