// Package prompt carries operator notifications and confirmations for the
// admin users screen without tying the caller to a particular front end.
package prompt

import "context"

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one message shown to the operator.
type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Confirmer guards irreversible actions. A false answer means do nothing.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Assume answers every confirmation with the same value, e.g. for a --yes flag.
type Assume bool

func (a Assume) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}
