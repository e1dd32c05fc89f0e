// Package main is the entry point for primdb.
//
// primdb is a primitive record store: typed tables kept as one JSON document
// each, driven by a line shell on stdin or, with -serve, by WebSocket clients.
// Configuration comes from an optional YAML file; flags override it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/primdb/internal/config"
	"github.com/leengari/primdb/internal/engine"
	"github.com/leengari/primdb/internal/executor"
	"github.com/leengari/primdb/internal/gate"
	"github.com/leengari/primdb/internal/logging"
	"github.com/leengari/primdb/internal/network"
	"github.com/leengari/primdb/internal/render"
	"github.com/leengari/primdb/internal/repl"
	"github.com/leengari/primdb/internal/storage"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "primdb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	dataDir := flag.String("data-dir", "", "Directory holding db_meta.json and data/ (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	serve := flag.Bool("serve", false, "Serve commands over WebSocket instead of reading stdin")
	addr := flag.String("addr", "", "Address to listen on with -serve (overrides config)")
	inMemory := flag.Bool("in-memory", false, "Keep everything in memory; nothing is written to disk")
	yes := flag.Bool("yes", false, "Answer yes to every confirmation")
	watch := flag.Bool("watch", false, "Invalidate cached results when table documents change on disk")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["data-dir"] {
		cfg.DataDir = *dataDir
	}
	if set["log-level"] {
		cfg.Log.Level = *logLevel
	}
	if set["addr"] {
		cfg.Server.Addr = *addr
	}
	if set["watch"] {
		cfg.Watch = *watch
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, closeLog := logging.Setup(logging.Options{Level: level, SeqURL: cfg.Log.SeqURL})
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	var (
		meta    engine.MetadataStore
		records engine.RecordStore
		files   *storage.JSONStore
	)
	if *inMemory {
		mem := storage.NewMemory()
		meta, records = mem, mem
	} else {
		files, err = storage.NewJSONStore(cfg.DataDir, cfg.MetaFile)
		if err != nil {
			return err
		}
		meta, records = files, files
	}

	var opts []engine.Option
	if !cfg.Cache.Enabled {
		opts = append(opts, engine.WithoutCache())
	}
	eng, err := engine.Open(meta, records, render.Table{}, opts...)
	if err != nil {
		return err
	}

	g := gate.New()
	g.AddObserver(gate.NewLoggingObserver())
	exec := executor.New(eng, g)

	grp, gctx := errgroup.WithContext(ctx)

	if cfg.Watch && files != nil {
		w, err := storage.NewWatcher(files.DataDir())
		if err != nil {
			return err
		}
		grp.Go(func() error {
			return w.Run(gctx, exec.Invalidate)
		})
	}

	if *serve {
		srv := network.NewServer(exec, cfg.Server.RatePerSec)
		grp.Go(func() error {
			return srv.Serve(gctx, cfg.Server.Addr)
		})
	} else {
		shell := repl.New(exec, os.Stdin, os.Stdout, repl.Options{
			Color:     isatty.IsTerminal(os.Stdout.Fd()),
			AssumeYes: *yes,
			Quiet:     !isatty.IsTerminal(os.Stdin.Fd()),
		})
		// The shell blocks on stdin, so an interrupt abandons it instead of
		// waiting for the next line.
		done := make(chan error, 1)
		go func() {
			done <- shell.Run(gctx)
		}()
		grp.Go(func() error {
			select {
			case err := <-done:
				stop()
				return err
			case <-gctx.Done():
				fmt.Fprintln(os.Stdout)
				return nil
			}
		})
	}

	return grp.Wait()
}

func printVersion() {
	version, goVersion, revision := "dev", "unknown", "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			version = v
		}
		goVersion = info.GoVersion
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				revision = setting.Value
			}
		}
	}
	fmt.Printf("primdb %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
}
