package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/engine"
	"github.com/lixenwraith/driftgrid/parameter"
	"github.com/lixenwraith/driftgrid/render"
)

var (
	Version = "dev"

	// Command-line configuration, applied over the environment
	config struct {
		backend  string
		tempo    float64
		volume   int
		headless bool
		duration time.Duration
		debug    bool
	}
)

var rootCmd = &cobra.Command{
	Use:   "driftgrid",
	Short: "Generative rhythm engine with a terminal visualizer",
	Long: `driftgrid plays an endlessly evolving beat: a lookahead scheduler walks a
regenerating 16-step pattern, six synthesized voices feed a distorted,
reverberant bus, and pointer gestures steer chaos, filter and tempo.

Controls:
• move the mouse to raise chaos and sweep the filter
• click or space for an interaction burst
• shake left-right or press m to cycle deep / glitch / drive
• p pins presence, q quits`,
	Version: Version,
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVarP(&config.backend, "backend", "b", "",
		"Audio output: speaker, oto, pipe, null (default from DRIFTGRID_BACKEND or speaker)")
	rootCmd.Flags().Float64VarP(&config.tempo, "tempo", "t", 0,
		"Base tempo in BPM (60-180)")
	rootCmd.Flags().IntVarP(&config.volume, "volume", "v", -1,
		"Master volume 0-100")
	rootCmd.Flags().BoolVar(&config.headless, "headless", false,
		"Run without the terminal visualizer")
	rootCmd.Flags().DurationVarP(&config.duration, "duration", "d", 0,
		"Stop after this long (0 runs until interrupted)")
	rootCmd.Flags().BoolVar(&config.debug, "debug", false,
		"Write logs to logs/driftgrid.log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers explicitly set flags over environment over defaults
func resolveConfig(changed func(name string) bool) *audio.Config {
	cfg := audio.LoadConfig()
	if changed("backend") {
		cfg.Backend = strings.ToLower(config.backend)
	}
	if changed("tempo") {
		cfg.BaseTempo = parameter.ClampBPM(config.tempo)
	}
	if changed("volume") {
		cfg.SetVolumePercent(config.volume)
	}
	return cfg
}

func run(cmd *cobra.Command, _ []string) error {
	if logFile := setupLogging(config.debug); logFile != nil {
		defer logFile.Close()
	}

	cfg := resolveConfig(cmd.Flags().Changed)
	log.Printf("[main] backend=%s tempo=%.1f volume=%.2f", cfg.Backend, cfg.BaseTempo, cfg.MasterVolume)

	eng := engine.New(engine.WithConfig(cfg))
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if config.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.duration)
		defer cancel()
	}

	headless := config.headless || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		return runHeadless(ctx, eng)
	}
	return runVisual(ctx, eng)
}

// runHeadless plays with presence pinned on and prints metrics once a second
func runHeadless(ctx context.Context, eng *engine.Engine) error {
	if res := eng.Init(); !res.OK() {
		return fmt.Errorf("audio %s", res)
	}
	eng.SetPresence(true)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			eng.Stop()
			for _, line := range eng.Registry().Dump() {
				log.Printf("[main] %s", line)
			}
			return nil
		case <-ticker.C:
			snap := eng.Snapshot()
			fmt.Printf("%-6s %5.1f bpm  chaos %.2f  vol %.2f  step %02d  measure %d\n",
				snap.Mode, snap.Tempo, snap.Chaos, snap.Volume, snap.Step, snap.Measure)
		}
	}
}

func runVisual(ctx context.Context, eng *engine.Engine) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}

	vis, err := render.NewVisualizer(screen, eng)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer vis.Close()

	// Audio failure leaves the grid running silent; a click retries Init
	if res := eng.Init(); !res.OK() {
		log.Printf("[main] audio %s, continuing silent", res)
	}
	eng.SetPresence(true)

	vis.Run(ctx)
	eng.Stop()
	return nil
}

