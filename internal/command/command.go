// Package command defines the chat command contract and a registry that
// parses and dispatches command lines.
package command

import (
	"context"
	"strings"
)

// Sender is whoever issued a command line.
type Sender interface {
	Name() string
	SendMessage(msg string)
	IsOperator() bool
}

// Command is a named chat command.
type Command interface {
	Name() string
	Usage(s Sender) string
	Aliases() []string
	Execute(ctx context.Context, s Sender, args []string) error
	CanUse(s Sender) bool
	// TabComplete suggests values for the last argument.
	TabComplete(s Sender, args []string) []string
	// IsUsernameIndex reports whether args[index] names a player.
	IsUsernameIndex(args []string, index int) bool
}

// Base carries the static parts of a command. Embed it and implement
// Execute.
type Base struct {
	CommandName    string
	CommandUsage   string
	CommandAliases []string
	// OperatorOnly restricts the command to operators.
	OperatorOnly bool
	// UsernameArgs are argument positions that name a player.
	UsernameArgs []int
}

func (b Base) Name() string { return b.CommandName }
func (b Base) Usage(Sender) string { return b.CommandUsage }
func (b Base) Aliases() []string { return b.CommandAliases }
func (b Base) CanUse(s Sender) bool { return !b.OperatorOnly || s.IsOperator() }
func (b Base) TabComplete(Sender, []string) []string { return nil }

func (b Base) IsUsernameIndex(args []string, index int) bool {
	if index < 0 || index >= len(args) {
		return false
	}
	for _, i := range b.UsernameArgs {
		if i == index {
			return true
		}
	}
	return false
}

// Compare orders commands by name.
func Compare(a, b Command) int {
	return strings.Compare(a.Name(), b.Name())
}

// MatchPrefix returns the candidates starting with prefix, ignoring case.
func MatchPrefix(prefix string, candidates []string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			out = append(out, c)
		}
	}
	return out
}
