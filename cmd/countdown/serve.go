package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"countdown/internal/config"
	"countdown/internal/entry"
	"countdown/internal/realtime"
	"countdown/internal/timer"
	"countdown/internal/watcher"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath string
	port       int
	staticDir  string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the timer server",
		Long: `Start the timer server.

Settings are read from the config file (if given), then the PORT,
STATIC_DIR, INTENT_RATE and INTENT_BURST environment variables, then
flags. Presets in the config file are reloaded when the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, opts.configPath)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "read settings and presets from `file` (YAML)")
	f.IntVarP(&opts.port, "port", "p", 0, "listen on `port`")
	f.StringVar(&opts.staticDir, "static", "", "serve frontend files from `dir`")

	return cmd
}

// loadConfig applies explicitly set flags on top of the file and
// environment configuration.
func loadConfig(flags *pflag.FlagSet, opts serveOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("static") {
		cfg.StaticDir = opts.staticDir
	}
	return cfg, cfg.Validate()
}

func runServe(ctx context.Context, cfg config.Config, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	presets, err := cfg.ParsePresets()
	if err != nil {
		return err
	}

	engine := timer.New(timer.WithHistorySize(cfg.HistorySize))
	defer engine.Close()

	rtServer := realtime.New(engine, cfg.StaticDir, cfg.IntentRate, cfg.IntentBurst)
	defer rtServer.Close()
	rtServer.SetPresets(presets)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: rtServer.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Countdown server running on http://localhost:%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return errors.Wrap(err, "HTTP server")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if configPath != "" {
		fileWatch, err := watcher.New(configPath, func(path string) {
			reloadPresets(rtServer, path)
		})
		if err != nil {
			log.Printf("config watcher disabled: %v", err)
		} else {
			g.Go(func() error {
				return fileWatch.Run(ctx)
			})
		}
	}

	return g.Wait()
}

// presetSetter receives a reloaded preset table.
type presetSetter interface {
	SetPresets(map[string]entry.Buffer)
}

// reloadPresets re-reads the config file and swaps in its presets. An
// invalid file keeps the current presets.
func reloadPresets(dst presetSetter, path string) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("config reload failed, keeping current presets: %v", err)
		return
	}
	presets, err := cfg.ParsePresets()
	if err != nil {
		log.Printf("config reload failed, keeping current presets: %v", err)
		return
	}
	dst.SetPresets(presets)
	log.Printf("reloaded %d presets from %s", len(presets), path)
}
