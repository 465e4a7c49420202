package session

import (
	"sync"

	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/player"
	"mini-mc-server/internal/profiling"
	"mini-mc-server/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WindowKind selects the window a session shows.
type WindowKind string

const (
	WindowBrewing   WindowKind = "brewing"
	WindowInventory WindowKind = "inventory"
)

// ParseWindowKind maps a name to a kind. Empty means brewing.
func ParseWindowKind(name string) (WindowKind, bool) {
	switch WindowKind(name) {
	case "", WindowBrewing:
		return WindowBrewing, true
	case WindowInventory:
		return WindowInventory, true
	}
	return "", false
}

// Session is one player's connection to the server: the player and the
// window they have open, either their own inventory or a brewing stand.
// Every mutation of the window goes through Do, which makes the session the
// container's single writer.
type Session struct {
	ID     uuid.UUID
	Kind   WindowKind
	Player *player.Player
	// Stand is nil unless Kind is WindowBrewing.
	Stand  *inventory.BrewingStand
	Window *inventory.Container

	mu       sync.Mutex
	closed   bool
	profiler *profiling.Profiler
	logger   *zap.Logger
}

func newSession(p *player.Player, kind WindowKind, brewTicks int, profiler *profiling.Profiler, logger *zap.Logger, opts ...inventory.Option) *Session {
	id := uuid.New()
	logger = logger.With(zap.String("session", id.String()), zap.String("player", p.Name))
	opts = append([]inventory.Option{inventory.WithID(id), inventory.WithLogger(logger)}, opts...)

	s := &Session{
		ID:       id,
		Kind:     kind,
		Player:   p,
		profiler: profiler,
		logger:   logger,
	}
	switch kind {
	case WindowInventory:
		s.Window = inventory.NewPlayerContainer(p.Inventory, opts...)
		p.AddStat(stats.AchievementOpenInv, 1)
	default:
		s.Kind = WindowBrewing
		s.Stand = inventory.NewBrewingStand(brewTicks)
		s.Window = inventory.NewBrewingContainer(s.Stand, p.Inventory, opts...)
		p.AddStat(stats.StatBrewingStandUsed, 1)
	}
	p.IsInventoryOpen = true
	return s
}

// Do runs fn with exclusive access to the session's window.
func (s *Session) Do(fn func(s *Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return fn(s)
}

// Attach registers l on the window and sends it the current contents and
// properties.
func (s *Session) Attach(l inventory.Listener) error {
	return s.Do(func(s *Session) error {
		if err := s.Window.AddListener(l); err != nil {
			return err
		}
		l.SendContainerContents(s.Window, s.Window.Contents())
		if v, ok := s.Window.GetWindowProperty(inventory.PropertyBrewTime); ok {
			l.SendWindowProperty(s.Window, inventory.PropertyBrewTime, v)
		}
		s.logger.Debug("listener attached", zap.Int("listeners", s.Window.ListenerCount()))
		return nil
	})
}

// Detach unregisters l. It is safe to call after Close.
func (s *Session) Detach(l inventory.Listener) {
	s.Window.RemoveListener(l)
}

// Tick advances the brewing stand, if any, and pushes the brew timer and
// any slot that changed behind the window's back.
func (s *Session) Tick() error {
	return s.Do(func(s *Session) error {
		if s.Stand != nil {
			stop := s.profiler.Track("brewing.Tick")
			changed := s.Stand.Tick()
			stop()
			if changed {
				if err := s.Window.SetWindowProperty(inventory.PropertyBrewTime, s.Stand.BrewTime()); err != nil {
					return err
				}
			}
		}

		defer s.profiler.Track("container.DetectChanges")()
		_, err := s.Window.DetectChanges()
		return err
	})
}

// Click applies a slot click from the player.
func (s *Session) Click(slot int, button inventory.MouseButton, double bool) (bool, error) {
	var ok bool
	err := s.Do(func(s *Session) error {
		var err error
		ok, err = s.Window.SlotClick(slot, button, double, s.Player.Inventory, s.Player)
		return err
	})
	return ok, err
}

// QuickMove shift-clicks slot into the other section of the window.
func (s *Session) QuickMove(slot int) (bool, error) {
	var ok bool
	err := s.Do(func(s *Session) error {
		var err error
		ok, err = s.Window.QuickMove(slot, s.Player)
		return err
	})
	return ok, err
}

// Take moves up to amount items from slot into the player's inventory. Only
// what the inventory has room for leaves the slot, so a full inventory
// changes nothing and runs no pickup hook.
func (s *Session) Take(slot, amount int) (int, error) {
	var taken int
	err := s.Do(func(s *Session) error {
		if src := s.Window.GetSlot(slot); src != nil && src.HasStack() {
			amount = min(amount, s.Player.Inventory.Room(src.GetStack()))
			if amount <= 0 {
				return nil
			}
		}
		removed, err := s.Window.Take(slot, amount, s.Player)
		if err != nil || removed == nil {
			return err
		}
		taken = removed.Count
		if !s.Player.Inventory.AddItem(removed) {
			taken -= removed.Count
			s.logger.Warn("take overflowed inventory", zap.Int("slot", slot), zap.Int("left", removed.Count))
			if _, err := s.Window.Insert(slot, removed); err != nil {
				return err
			}
		}
		if taken > 0 {
			s.Player.AddStat(stats.StatItemsPickedUp, taken)
		}
		_, err = s.Window.DetectChanges()
		return err
	})
	return taken, err
}

// Close closes the window and refuses any further Do.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.Window.Close()
	s.Player.IsInventoryOpen = false
	s.logger.Info("session closed")
}
