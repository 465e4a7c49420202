package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCommandExists    = errors.New("command already registered")
)

// UsageError reports malformed arguments together with the expected usage.
type UsageError struct {
	Usage  string
	Reason string
}

func (e *UsageError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("usage: %s", e.Usage)
	}
	return fmt.Sprintf("%s; usage: %s", e.Reason, e.Usage)
}

// Usagef builds a UsageError for cmd with a formatted reason.
func Usagef(cmd Command, s Sender, format string, args ...any) error {
	return &UsageError{Usage: cmd.Usage(s), Reason: fmt.Sprintf(format, args...)}
}
