package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmorek/animos/internal/config"
	"github.com/marmorek/animos/internal/console"
	"github.com/marmorek/animos/internal/engine"
	"github.com/marmorek/animos/internal/miditrig"
	"github.com/marmorek/animos/internal/models"
	"github.com/marmorek/animos/internal/oscin"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/sink"
)

var (
	flagConfig   string
	flagProject  string
	flagDebug    string
	flagHeadless bool
	flagOSCPort  int
)

func main() {
	root := &cobra.Command{
		Use:   "animos",
		Short: "Spatial audio animation engine",
		Long:  "animos drives spatial-audio track positions from cue-triggered animations, over OSC.",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&flagProject, "project", "project.json.gz", "project file to load")
	root.PersistentFlags().StringVar(&flagDebug, "debug", "", "if set, write debug logs to this file; empty disables logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Load the project and start the engine",
		RunE:  runEngine,
	}
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run without the operator console")
	runCmd.Flags().IntVar(&flagOSCPort, "osc-port", 0, "override the outbound OSC port")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a project file against the model registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			proj, err := project.Load(flagProject)
			if err != nil {
				return err
			}
			proj.EnsureBuiltins()
			if err := proj.Validate(); err != nil {
				return err
			}
			fmt.Printf("%s: ok\n", proj)
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the registered animation models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, tag := range models.Tags() {
				m, _ := models.Lookup(tag)
				meta := m.Meta()
				fmt.Printf("%-12s %-10s %s\n", meta.Tag, meta.Category, meta.Name)
				for _, p := range meta.Params {
					fmt.Printf("    %-16s [%g, %g] default %g  %s\n", p.Name, p.Min, p.Max, p.Default, p.Doc)
				}
				if meta.MinPoints > 0 {
					fmt.Printf("    points: at least %d\n", meta.MinPoints)
				}
			}
		},
	}

	root.AddCommand(runCmd, validateCmd, modelsCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	if flagDebug != "" {
		f, err := os.OpenFile(flagDebug, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("Fatal: %v", err)
			os.Exit(1)
		}
		log.SetOutput(f)
		// file and line numbers give clickable links in editors
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Debug logging enabled")
		return
	}
	log.SetOutput(io.Discard)
}

func runEngine(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flagOSCPort > 0 {
		cfg.OSC.Port = flagOSCPort
	}

	proj, err := project.Load(flagProject)
	if err != nil {
		return err
	}
	proj.EnsureBuiltins()
	if err := proj.Validate(); err != nil {
		return err
	}

	out := sink.NewOSC(cfg.OSC.Host, cfg.OSC.Port, cfg.SendInterval())
	eng := engine.New(proj, out, engine.Config{
		TickInterval: cfg.TickInterval(),
		Epsilon:      cfg.EpsilonMeters,
		QueueSize:    cfg.QueueSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := eng.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("engine: %v", err)
		}
	}()

	if cfg.In.Enable {
		disp := oscin.New(cfg.In.Port, proj, eng)
		go func() {
			if err := disp.ListenAndServe(); err != nil {
				log.Printf("osc listener: %v", err)
			}
		}()
	}

	if cfg.MIDI.Enable {
		listener, err := miditrig.Open(cfg.MIDI.Device, proj, eng)
		if err != nil {
			log.Printf("midi: %v (continuing without midi triggers)", err)
		} else {
			defer listener.Close()
		}
	}

	if flagHeadless {
		fmt.Printf("engine running: %s -> osc://%s:%d (ctrl-c to quit)\n", proj, cfg.OSC.Host, cfg.OSC.Port)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		// give the engine a tick to flush
		time.Sleep(cfg.TickInterval())
		return nil
	}

	ui := console.New(eng, proj)
	eng.SubscribeClipEvents(func(ev engine.Event) {
		select {
		case ui.Events() <- ev:
		default:
			// a stalled console never blocks the engine thread
		}
	})
	return console.Run(ui)
}
