package command

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"mini-mc-server/internal/stats"

	"go.uber.org/zap"
)

// Registry maps names and aliases to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]Command

	players func() []string
	logger  *zap.Logger
}

type Option func(*Registry)

// WithPlayers supplies online player names for username completion.
func WithPlayers(fn func() []string) Option {
	return func(r *Registry) { r.players = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]Command),
		players:  func() []string { return nil },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds cmd. Names and aliases are case-insensitive and must be
// unique.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(cmd.Name())
	if r.lookupLocked(name) != nil {
		return fmt.Errorf("register %s: %w", name, ErrCommandExists)
	}
	for _, a := range cmd.Aliases() {
		if r.lookupLocked(strings.ToLower(a)) != nil {
			return fmt.Errorf("register %s alias %s: %w", name, a, ErrCommandExists)
		}
	}
	r.commands[name] = cmd
	for _, a := range cmd.Aliases() {
		r.aliases[strings.ToLower(a)] = cmd
	}
	return nil
}

func (r *Registry) lookupLocked(name string) Command {
	if c, ok := r.commands[name]; ok {
		return c
	}
	return r.aliases[name]
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := r.lookupLocked(strings.ToLower(name))
	return c, c != nil
}

// Commands returns the registered commands ordered by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, Compare)
	return out
}

// Split parses a command line into the command name and its arguments.
// A leading slash is optional.
func Split(line string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Dispatch runs the command named on line on behalf of s.
func (r *Registry) Dispatch(ctx context.Context, s Sender, line string) error {
	name, args := Split(line)
	if name == "" {
		return fmt.Errorf("empty command line: %w", ErrUnknownCommand)
	}
	cmd, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	if !cmd.CanUse(s) {
		return fmt.Errorf("%s: %w", cmd.Name(), ErrPermissionDenied)
	}
	if actor, ok := s.(stats.Actor); ok {
		actor.AddStat(stats.StatCommandsDispatched, 1)
	}
	r.logger.Debug("dispatch command",
		zap.String("player", s.Name()),
		zap.String("command", cmd.Name()),
		zap.Strings("args", args))
	return cmd.Execute(ctx, s, args)
}

// Complete returns suggestions for the last word of a partial line.
func (r *Registry) Complete(s Sender, line string) []string {
	trimmed := strings.TrimPrefix(strings.TrimLeft(line, " "), "/")
	name, args := Split(trimmed)
	if !strings.Contains(trimmed, " ") {
		var names []string
		for _, c := range r.Commands() {
			if c.CanUse(s) {
				names = append(names, c.Name())
			}
		}
		return MatchPrefix(name, names)
	}

	cmd, ok := r.Lookup(name)
	if !ok || !cmd.CanUse(s) {
		return nil
	}
	// a trailing space starts a new, empty argument
	if strings.HasSuffix(line, " ") {
		args = append(args, "")
	}
	if len(args) == 0 {
		return nil
	}
	if out := cmd.TabComplete(s, args); out != nil {
		return out
	}
	if last := len(args) - 1; cmd.IsUsernameIndex(args, last) {
		return MatchPrefix(args[last], r.players())
	}
	return nil
}
