//go:build !windows

// Package miditrig fires cues from MIDI note-on messages, the third trigger
// source next to the console and inbound OSC.
package miditrig

import (
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// Engine is the command surface the listener drives.
type Engine interface {
	TriggerCue(cueID string) (types.ClipID, error)
}

// Listener owns an open MIDI input port and the note→cue table.
type Listener struct {
	in   drivers.In
	stop func()
	// bindings index by (channel<<8 | note); channel 0 in a binding matches
	// any channel
	bindings map[int][]string
	anyCh    map[int][]string
}

// Devices lists the available MIDI input port names.
func Devices() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// Open finds an input port by (partial, case-insensitive) name and starts
// listening. Cue bindings come from the project's MIDI triggers.
func Open(device string, proj *project.Project, eng Engine) (*Listener, error) {
	var in drivers.In
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), strings.ToLower(device)) {
			in = port
			break
		}
	}
	if in == nil {
		return nil, fmt.Errorf("midi: no input port matching %q", device)
	}

	l := &Listener{
		in:       in,
		bindings: make(map[int][]string),
		anyCh:    make(map[int][]string),
	}
	for i := range proj.Cues {
		cue := &proj.Cues[i]
		for _, tb := range cue.Triggers {
			if tb.Kind != project.TriggerMIDI {
				continue
			}
			if tb.Channel > 0 {
				key := tb.Channel<<8 | tb.Note
				l.bindings[key] = append(l.bindings[key], cue.ID)
			} else {
				l.anyCh[tb.Note] = append(l.anyCh[tb.Note], cue.ID)
			}
		}
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		if !msg.GetNoteStart(&ch, &key, &vel) {
			return
		}
		for _, cueID := range l.cuesFor(int(ch)+1, int(key)) {
			log.Printf("midi note %d ch %d -> cue %s", key, ch+1, cueID)
			if _, err := eng.TriggerCue(cueID); err != nil {
				log.Printf("midi trigger rejected: %v", err)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midi listen: %w", err)
	}
	l.stop = stop
	log.Printf("midi trigger listener on %s", in.String())
	return l, nil
}

func (l *Listener) cuesFor(channel, note int) []string {
	out := append([]string(nil), l.bindings[channel<<8|note]...)
	return append(out, l.anyCh[note]...)
}

// Close stops listening and releases the port.
func (l *Listener) Close() {
	if l.stop != nil {
		l.stop()
	}
	midi.CloseDriver()
}
