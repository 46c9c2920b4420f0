package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-cave/internal/config"
	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/scene"
	"github.com/vovakirdan/tui-cave/internal/stage"
	"github.com/vovakirdan/tui-cave/internal/storage"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// logFileName is where TUI sessions log, inside the data directory.
const logFileName = "cave.log"

// app holds what every command loads from flags: constants, logger,
// global scripts and the stage table.
type app struct {
	consts  config.EngineConstants
	logger  *log.Logger
	global  *tsc.Table
	stages  *stage.Table
	logFile *os.File
}

func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, nil
}

// loadApp loads the engine constants, scripts and stages. With toFile the
// logger writes to the data directory instead of stderr.
func loadApp(toFile bool) (*app, error) {
	a := &app{}

	var w io.Writer = os.Stderr
	if toFile {
		f, err := os.OpenFile(filepath.Join(flagDataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		a.logFile = f
		w = f
	}
	logger, err := newLogger(w, "cave")
	if err != nil {
		a.Close()
		return nil, err
	}
	a.logger = logger

	if a.consts, err = config.LoadEngine(flagConfig); err != nil {
		a.Close()
		return nil, err
	}
	if a.global, err = scene.LoadGlobalScripts(flagDataDir); err != nil {
		a.Close()
		return nil, err
	}
	if a.stages, err = stage.NewLoader(filepath.Join(flagDataDir, scene.StagesDir)).LoadAll(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug("engine loaded",
		"data", flagDataDir,
		"scripts", a.global.Len(),
		"stages", len(a.stages.Stages()),
		"flags", a.consts.Flags.Count,
	)
	return a, nil
}

// deps builds scene dependencies. store may be nil.
func (a *app) deps(store *storage.Store) scene.Deps {
	d := scene.Deps{
		Consts:  &a.consts,
		Global:  a.global,
		Stages:  a.stages,
		Logger:  a.logger,
		DataDir: flagDataDir,
	}
	if store != nil {
		d.Saves = store
		d.Aborts = store
	}
	return d
}

// Close releases the log file, if any.
func (a *app) Close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// runtimeConfig returns the runtime config for the current terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg
}

// openStore opens the saves database or reports why it could not.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open saves database: %w", err)
	}
	return store, nil
}
