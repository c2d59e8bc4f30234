// Package oscin translates inbound OSC control messages into engine
// commands. The core never parses OSC itself; this dispatcher is the
// boundary.
package oscin

import (
	"fmt"
	"log"

	"github.com/hypebeast/go-osc/osc"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// Engine is the slice of the engine API the dispatcher drives. Kept narrow
// so tests can record calls.
type Engine interface {
	TriggerCue(cueID string) (types.ClipID, error)
	StopAll(fadeSeconds float64) error
}

// Dispatcher owns the OSC server socket and the address table.
type Dispatcher struct {
	server *osc.Server
	port   int
}

// New builds a dispatcher for the project's cue bindings. Every cue gets a
// default /cue/<id>/go address; cues with explicit OSC trigger bindings are
// reachable at those addresses too.
func New(port int, proj *project.Project, eng Engine) *Dispatcher {
	return &Dispatcher{
		server: &osc.Server{Addr: fmt.Sprintf(":%d", port), Dispatcher: newDispatcher(proj, eng)},
		port:   port,
	}
}

// newDispatcher builds the address table. Split out so tests can dispatch
// packets without a socket.
func newDispatcher(proj *project.Project, eng Engine) *osc.StandardDispatcher {
	d := osc.NewStandardDispatcher()

	addCue := func(addr, cueID string) {
		if err := d.AddMsgHandler(addr, func(msg *osc.Message) {
			log.Printf("osc trigger %s -> cue %s", msg.Address, cueID)
			if _, err := eng.TriggerCue(cueID); err != nil {
				log.Printf("osc trigger %s rejected: %v", msg.Address, err)
			}
		}); err != nil {
			log.Printf("osc handler %s: %v", addr, err)
		}
	}

	for i := range proj.Cues {
		cue := &proj.Cues[i]
		addCue(fmt.Sprintf("/cue/%s/go", cue.ID), cue.ID)
		for _, tb := range cue.Triggers {
			if tb.Kind == project.TriggerOSC && tb.Address != "" {
				addCue(tb.Address, cue.ID)
			}
		}
	}

	if err := d.AddMsgHandler("/engine/stopall", func(msg *osc.Message) {
		fade := 0.0
		if len(msg.Arguments) > 0 {
			if f, ok := msg.Arguments[0].(float32); ok {
				fade = float64(f)
			}
		}
		if err := eng.StopAll(fade); err != nil {
			log.Printf("osc stopall: %v", err)
		}
	}); err != nil {
		log.Printf("osc handler /engine/stopall: %v", err)
	}

	return d
}

// ListenAndServe blocks on the UDP socket. Run it on its own goroutine; it
// only returns on socket failure.
func (disp *Dispatcher) ListenAndServe() error {
	log.Printf("osc trigger listener on :%d", disp.port)
	return disp.server.ListenAndServe()
}
