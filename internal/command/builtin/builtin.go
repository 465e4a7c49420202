// Package builtin holds the server's own chat commands.
package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mini-mc-server/internal/chatfmt"
	"mini-mc-server/internal/command"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/item"
	"mini-mc-server/internal/session"
)

// Register adds every builtin command to r.
func Register(r *command.Registry, m *session.Manager) error {
	cmds := []command.Command{
		newGive(m),
		newClear(m),
		newStats(m),
		newList(m),
		newColors(),
		newHelp(r),
	}
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type give struct {
	command.Base
	sessions *session.Manager
}

func newGive(m *session.Manager) *give {
	return &give{
		Base: command.Base{
			CommandName:  "give",
			CommandUsage: "/give <player> <item> [count]",
			OperatorOnly: true,
			UsernameArgs: []int{0},
		},
		sessions: m,
	}
}

func (g *give) Execute(_ context.Context, s command.Sender, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return command.Usagef(g, s, "wrong number of arguments")
	}
	kind, ok := item.ByName(args[1])
	if !ok || kind == item.Air {
		return command.Usagef(g, s, "unknown item %q", args[1])
	}
	count := 1
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		maxCount := item.Lookup(kind).MaxStackSize * inventory.MainInventorySize
		if err != nil || n < 1 || n > maxCount {
			return command.Usagef(g, s, "count must be between 1 and %d", maxCount)
		}
		count = n
	}

	target, err := g.sessions.ByPlayer(args[0])
	if err != nil {
		return err
	}

	given := 0
	err = target.Do(func(t *session.Session) error {
		stack := item.NewItemStack(kind, count)
		t.Player.Inventory.AddItem(&stack)
		given = count - stack.Count
		_, err := t.Window.DetectChanges()
		return err
	})
	if err != nil {
		return err
	}

	s.SendMessage(fmt.Sprintf("Gave %d %s to %s", given, kind, target.Player.Name))
	if given < count {
		s.SendMessage(chatfmt.Format(fmt.Sprintf("%s's inventory is full", target.Player.Name), chatfmt.Red))
	}
	return nil
}

func (g *give) TabComplete(_ command.Sender, args []string) []string {
	if len(args) == 2 {
		return command.MatchPrefix(args[1], item.Names())
	}
	return nil
}

type clearCmd struct {
	command.Base
	sessions *session.Manager
}

func newClear(m *session.Manager) *clearCmd {
	return &clearCmd{
		Base: command.Base{
			CommandName:  "clear",
			CommandUsage: "/clear [player]",
			OperatorOnly: true,
			UsernameArgs: []int{0},
		},
		sessions: m,
	}
}

func (c *clearCmd) Execute(_ context.Context, s command.Sender, args []string) error {
	if len(args) > 1 {
		return command.Usagef(c, s, "too many arguments")
	}
	name := s.Name()
	if len(args) == 1 {
		name = args[0]
	}
	target, err := c.sessions.ByPlayer(name)
	if err != nil {
		return err
	}
	removed := 0
	err = target.Do(func(t *session.Session) error {
		removed = t.Player.Inventory.Clear()
		_, err := t.Window.DetectChanges()
		return err
	})
	if err != nil {
		return err
	}
	s.SendMessage(fmt.Sprintf("Cleared the inventory of %s, removing %d items", target.Player.Name, removed))
	return nil
}

type statsCmd struct {
	command.Base
	sessions *session.Manager
}

func newStats(m *session.Manager) *statsCmd {
	return &statsCmd{
		Base: command.Base{
			CommandName:  "stats",
			CommandUsage: "/stats [player]",
			UsernameArgs: []int{0},
		},
		sessions: m,
	}
}

func (c *statsCmd) Execute(_ context.Context, s command.Sender, args []string) error {
	if len(args) > 1 {
		return command.Usagef(c, s, "too many arguments")
	}
	name := s.Name()
	if len(args) == 1 {
		name = args[0]
	}
	target, err := c.sessions.ByPlayer(name)
	if err != nil {
		return err
	}
	entries := target.Player.Stats.Snapshot()
	if len(entries) == 0 {
		s.SendMessage(fmt.Sprintf("%s has no stats yet", target.Player.Name))
		return nil
	}
	s.SendMessage(chatfmt.Format("Stats for "+target.Player.Name, chatfmt.Gold, chatfmt.Bold))
	for _, e := range entries {
		s.SendMessage(fmt.Sprintf("%s%s%s: %d", chatfmt.Gray, e.Achievement, chatfmt.Reset, e.Value))
	}
	return nil
}

type list struct {
	command.Base
	sessions *session.Manager
}

func newList(m *session.Manager) *list {
	return &list{
		Base:     command.Base{CommandName: "list", CommandUsage: "/list", CommandAliases: []string{"who"}},
		sessions: m,
	}
}

func (l *list) Execute(_ context.Context, s command.Sender, _ []string) error {
	names := l.sessions.PlayerNames()
	s.SendMessage(fmt.Sprintf("There are %d players online: %s", len(names), strings.Join(names, ", ")))
	return nil
}

type colors struct {
	command.Base
}

func newColors() *colors {
	return &colors{Base: command.Base{CommandName: "colors", CommandUsage: "/colors [formats]"}}
}

func (c *colors) Execute(_ context.Context, s command.Sender, args []string) error {
	formats := len(args) == 1 && args[0] == "formats"
	if len(args) > 0 && !formats {
		return command.Usagef(c, s, "unknown option %q", args[0])
	}
	parts := make([]string, 0)
	for _, name := range chatfmt.Names(!formats, formats) {
		f, _ := chatfmt.ByName(name)
		if f == chatfmt.Reset {
			continue
		}
		parts = append(parts, chatfmt.Format(name, f))
	}
	s.SendMessage(strings.Join(parts, " "))
	return nil
}

func (c *colors) TabComplete(_ command.Sender, args []string) []string {
	if len(args) == 1 {
		return command.MatchPrefix(args[0], []string{"formats"})
	}
	return nil
}

type help struct {
	command.Base
	registry *command.Registry
}

func newHelp(r *command.Registry) *help {
	return &help{
		Base:     command.Base{CommandName: "help", CommandUsage: "/help [command]", CommandAliases: []string{"?"}},
		registry: r,
	}
}

func (h *help) Execute(_ context.Context, s command.Sender, args []string) error {
	if len(args) > 1 {
		return command.Usagef(h, s, "too many arguments")
	}
	if len(args) == 1 {
		c, ok := h.registry.Lookup(args[0])
		if !ok || !c.CanUse(s) {
			return fmt.Errorf("%s: %w", args[0], command.ErrUnknownCommand)
		}
		s.SendMessage(c.Usage(s))
		return nil
	}
	for _, c := range h.registry.Commands() {
		if c.CanUse(s) {
			s.SendMessage(c.Usage(s))
		}
	}
	return nil
}

func (h *help) TabComplete(s command.Sender, args []string) []string {
	if len(args) != 1 {
		return nil
	}
	var names []string
	for _, c := range h.registry.Commands() {
		if c.CanUse(s) {
			names = append(names, c.Name())
		}
	}
	return command.MatchPrefix(args[0], names)
}
