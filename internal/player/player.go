package player

import (
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GameMode int

const (
	GameModeSurvival GameMode = iota
	GameModeCreative
)

func (m GameMode) String() string {
	if m == GameModeCreative {
		return "creative"
	}
	return "survival"
}

// Player is the actor that owns an inventory and is credited with stats.
type Player struct {
	ID       uuid.UUID
	Name     string
	GameMode GameMode

	// Operator players may run privileged commands.
	Operator bool

	// Inventory
	Inventory       *inventory.Inventory
	IsInventoryOpen bool

	Stats *stats.Tracker

	logger *zap.Logger
}

func New(name string, mode GameMode, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Player{
		ID:        id,
		Name:      name,
		GameMode:  mode,
		Inventory: inventory.New(),
		Stats:     stats.NewTracker(),
		logger:    logger.With(zap.String("player", name), zap.String("player_id", id.String())),
	}
}

// AddStat implements stats.Actor.
func (p *Player) AddStat(a stats.Achievement, amount int) {
	p.Stats.AddStat(a, amount)
	if a == stats.AchievementPotion {
		p.logger.Info("achievement unlocked", zap.String("achievement", string(a)))
	}
}
