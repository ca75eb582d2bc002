package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shopdeck/internal/config"
	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/logging"
	"github.com/five82/shopdeck/internal/prefs"
	"github.com/five82/shopdeck/internal/storefront"
	"github.com/five82/shopdeck/internal/ui"
)

// Options configure the shopdeck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shopdeck/prefs.toml
	APIURL     string // overrides api_url from config when set
}

// runUI is swapped out in tests; the real program needs a terminal.
var runUI = ui.Run

// Run boots the shopdeck TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if url := strings.TrimSpace(opts.APIURL); url != "" {
		cfg.APIURL = url
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		// Load still returns defaults alongside the error.
		logger.Warn("load prefs failed, using defaults", zap.Error(err))
	}

	client, err := storefront.NewClient(cfg.APIURL, storefront.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("init storefront client: %w", err)
	}

	logger.Info("starting shopdeck",
		zap.String("api", client.BaseURL()),
		zap.Duration("dashboard_interval", cfg.DashboardInterval),
		zap.Duration("orders_interval", cfg.OrdersInterval),
		zap.Duration("messages_interval", cfg.MessagesInterval),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := console.New(ctx, client, consoleOptions(cfg, logger))
	c.Show(startView(userPrefs, logger))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return runUI(gctx, ui.Options{
			Context:   gctx,
			Console:   c,
			Logger:    logger,
			ThemeName: userPrefs.Theme,
			PrefsPath: opts.PrefsPath,
			LogPath:   logFile(cfg.LogFile),
		})
	})

	// Retire every poll lease once the UI exits or a signal arrives.
	g.Go(func() error {
		<-gctx.Done()
		c.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("shopdeck exited with error", zap.Error(err))
		return err
	}
	logger.Info("shopdeck stopped")
	return nil
}

func consoleOptions(cfg config.Config, logger *zap.Logger) console.Options {
	opts := console.DefaultOptions()
	opts.DashboardInterval = cfg.DashboardInterval
	opts.OrdersInterval = cfg.OrdersInterval
	opts.MessagesInterval = cfg.MessagesInterval
	opts.ProductsLimit = cfg.ProductsLimit
	opts.Logger = logger
	return opts
}

// logFile returns the log path for the in-app overlay, or "" when logs go
// to a standard stream.
func logFile(output string) string {
	switch output {
	case "stdout", "stderr":
		return ""
	}
	return output
}

func startView(p prefs.Prefs, logger *zap.Logger) console.View {
	view, ok := console.ParseView(p.StartView)
	if !ok {
		if p.StartView != "" {
			logger.Warn("unknown start view in prefs", zap.String("view", p.StartView))
		}
		return console.Dashboard
	}
	return view
}
