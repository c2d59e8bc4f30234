//go:build windows

package miditrig

import (
	"fmt"

	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// Engine is the command surface the listener drives.
type Engine interface {
	TriggerCue(cueID string) (types.ClipID, error)
}

// Listener is a stub on Windows; the rtmidi driver is not wired there.
type Listener struct{}

func Devices() []string { return nil }

func Open(device string, proj *project.Project, eng Engine) (*Listener, error) {
	return nil, fmt.Errorf("midi triggers are not supported on windows")
}

func (l *Listener) Close() {}
