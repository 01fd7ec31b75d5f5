package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/config"
	"github.com/peppermintos/ice/internal/favicon"
	"github.com/peppermintos/ice/internal/logging"
	"github.com/peppermintos/ice/internal/ssb"
	"github.com/peppermintos/ice/internal/store"
)

// annotationReconcile marks commands that run the reconciliation pass
// before doing their own work.
const annotationReconcile = "ice/reconcile"

var reconcileFirst = map[string]string{annotationReconcile: "true"}

// app is the state shared by all commands for one invocation.
var app struct {
	cfg     *config.Config
	cfgPath string
	log     *slog.Logger
	store   *store.Store
	mgr     *ssb.Manager
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(config.DefaultEnvPath()); err != nil {
		return err
	}

	app.cfgPath = flagConfig
	if app.cfgPath == "" {
		app.cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(app.cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app.cfg = cfg

	level, _ := logging.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = slog.LevelDebug
	}
	app.log = logging.Setup(os.Stderr, level)
	app.log.Debug("configuration loaded", "path", app.cfgPath, "apps", cfg.Paths.AppsDir, "data", cfg.Paths.IceDir)

	if cmd.Annotations[annotationReconcile] == "true" && !flagNoReconcile {
		mgr, err := manager()
		if err != nil {
			return err
		}
		report, err := mgr.Reconcile(commandContext(cmd), ssb.ReconcileOptions{})
		if err != nil {
			app.log.Warn("profile cleanup incomplete", "error", err)
		}
		if report != nil && report.Held {
			app.log.Warn("run 'ice cleanup' to delete profiles with no launcher", "apps", app.cfg.Paths.AppsDir)
		}
		if report != nil && !report.Empty() {
			app.log.Info("profile cleanup", "restored", len(report.Restored), "removed", len(report.Removed))
		}
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	app.mgr = nil
	if app.store != nil {
		err := app.store.Close()
		app.store = nil
		return err
	}
	return nil
}

// manager opens the history store and returns the SSB manager, creating
// Ice's directories on first use.
func manager() (*ssb.Manager, error) {
	if app.mgr != nil {
		return app.mgr, nil
	}
	if err := app.cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	var rec ssb.Recorder
	st, err := store.Open(app.cfg.DBPath())
	if err != nil {
		app.log.Warn("history unavailable", "path", app.cfg.DBPath(), "error", err)
	} else {
		app.store = st
		rec = st
	}

	app.mgr = ssb.NewManager(app.cfg, rec, newFinder(), app.log)
	return app.mgr, nil
}

func newFinder() *favicon.Finder {
	fc := app.cfg.Favicon
	return favicon.NewFinder(time.Duration(fc.TimeoutSeconds)*time.Second, fc.UserAgent, fc.GoogleProxy)
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
