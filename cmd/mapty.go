package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/mapty/internal/config"
	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/mapty"
	"github.com/lowaak/mapty/internal/storage"
	"github.com/lowaak/mapty/internal/workout"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mapty: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.NewFlagSet("mapty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	defer logFile.Close()

	uiLogChan := make(chan string, 100)
	logger := log.New(io.MultiWriter(logFile, mapty.NewLogChannelWriter(uiLogChan)), "", log.LstdFlags)
	logger.Printf("main: starting, data dir %s, store %s", cfg.DataDir, cfg.Store.Backend)

	kv, err := storage.Open(cfg.Store.Backend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()
	repo := storage.NewWorkoutRepository(kv, logger)

	if dump, _ := fs.GetBool("dump"); dump {
		return dumpWorkouts(os.Stdout, repo)
	}
	if reset, _ := fs.GetBool("reset"); reset {
		if err := repo.Clear(); err != nil {
			return fmt.Errorf("clearing workouts: %w", err)
		}
		fmt.Println("All workouts deleted.")
		return nil
	}

	locator, err := newLocator(cfg.Geolocation)
	if err != nil {
		return err
	}

	tviewApp := tview.NewApplication()
	view := mapty.NewCursesUIView(logger, tviewApp, cfg.Map.PanDuration)

	app := mapty.NewApp(mapty.NewAppArg{
		Store:      repo,
		Locator:    locator,
		Map:        view.Map(),
		Form:       view,
		List:       view,
		Alerter:    view,
		Logger:     logger,
		Zoom:       cfg.Map.Zoom,
		GeoTimeout: cfg.Geolocation.Timeout,
		Dispatch:   view.Dispatch,
		Go:         func(name string, fn func()) { go_func_utils.SafeGo(logger, name, fn) },
	})

	appModel := mapty.NewAppModel(logger, uiLogChan)
	baseView := mapty.NewBaseUIView(mapty.NewBaseUIViewArg{
		UIViewImpl: view,
		AppModel:   appModel,
		App:        app,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Initialize(ctx)

	runErr := baseView.Run()
	view.Stop()
	cancel()
	baseView.Shutdown()
	appModel.Shutdown()
	logger.Println("main: exited")
	if runErr != nil {
		return fmt.Errorf("running UI: %w", runErr)
	}
	return nil
}

func newLocator(cfg config.GeolocationConfig) (geo.Locator, error) {
	if !cfg.HasPosition {
		return geo.UnavailableLocator{Reason: "no position configured"}, nil
	}
	locator, err := geo.NewStaticLocator(cfg.Latitude, cfg.Longitude)
	if err != nil {
		return nil, fmt.Errorf("configuring position: %w", err)
	}
	return locator, nil
}

// dumpWorkouts writes the stored workouts to w as a YAML document
func dumpWorkouts(w io.Writer, repo mapty.WorkoutStore) error {
	workouts := repo.Load()
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(workouts); err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}
	return enc.Close()
}
