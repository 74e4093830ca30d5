// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the exdict hover dictionary server and CLI [DBG] application.

exdict builds an in-memory dictionary from CSV and TSV files and answers
lookups for editor hovers. A lookup tries the token as is, then once more with
its last character dropped, so "ORDER_TBLS" still finds "ORDER_TBL". It can
operate as a MessagePack IPC server spawned by an editor extension, as an
interactive CLI for testing dictionaries, or as a one-shot lookup.

# Usage

Start the server with the default config:

	exdict

Use a custom config, resolve source paths against another directory and
enable debug mode:

	exdict -config ./exdict.toml -base ./dict -d

Run in CLI mode for interactive testing:

	exdict -c

Look a single key up and print its content:

	exdict -t ORDER_TBL

# Configuration

The TOML file holds server and CLI options and the list of sources. It is
created with defaults at ~/.config/exdict/config.toml when missing:

	[server]
	max_token_length = 128
	complete_limit = 20
	watch = false
	debounce_ms = 250

	[log]
	level = "warn"

	[[sources]]
	path = "dict/orders.tsv"
	id_column = 0
	value_column = 1
	description_columns = [2, 3]
	encoding = "shift_jis"

Sources are loaded in order and later files overwrite earlier keys. A file
that is missing or unreadable is reported and skipped; the others still load.

# Server Mode

The default mode reads msgpack requests from stdin and writes responses to
stdout. Logs go to stderr. See package server for the protocol. With -watch,
or watch = true in the config, edits to the config or any source file rebuild
the dictionary and push a reload message to the client.

# Command Line Flags

	-config string
	    Path to the TOML config (default ~/.config/exdict/config.toml)
	-base string
	    Directory relative source paths are resolved against (default: config dir)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-t string
	    Look up one token, print the result and exit (status 1 when absent)
	-watch
	    Rebuild the dictionary when the config or sources change
	-reset-config
	    Overwrite the default config file with defaults and exit
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bastiangx/exdict/internal/cli"
	"github.com/bastiangx/exdict/internal/logger"
	"github.com/bastiangx/exdict/internal/utils"
	"github.com/bastiangx/exdict/internal/watch"
	"github.com/bastiangx/exdict/pkg/config"
	"github.com/bastiangx/exdict/pkg/lookup"
	"github.com/bastiangx/exdict/pkg/server"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "exdict"
	gh      = "https://github.com/bastiangx/exdict"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// session keeps the active config so reloads and the watcher agree on it.
type session struct {
	mu         sync.Mutex
	cfg        *config.Config
	configPath string
	baseDir    string
	engine     *lookup.Engine
}

// reload re-reads the config file when there is one and rebuilds the dictionary.
func (s *session) reload() ([]source.Report, []string, error) {
	s.mu.Lock()
	if s.configPath != "" {
		fresh, err := config.LoadConfig(s.configPath)
		if err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
		s.cfg = fresh
	}
	descs := s.cfg.Descriptors(s.baseDir)
	missing := s.cfg.MissingSources(s.baseDir)
	s.mu.Unlock()

	for _, path := range missing {
		log.Errorf("Source file not found: %s", path)
	}
	return s.engine.Load(descs), missing, nil
}

// files lists what the watcher should track.
func (s *session) files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]string, 0, len(s.cfg.Sources)+1)
	if s.configPath != "" {
		files = append(files, s.configPath)
	}
	for _, d := range s.cfg.Descriptors(s.baseDir) {
		files = append(files, d.Path)
	}
	return files
}

// main wires config, engine and the selected front end together.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to the TOML config file")
	baseDir := flag.String("base", "", "Directory relative source paths are resolved against")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing dictionaries")
	token := flag.String("t", "", "Look up one token and exit")
	watchFlag := flag.Bool("watch", false, "Rebuild the dictionary when sources change")
	resetConfig := flag.Bool("reset-config", false, "Overwrite the default config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Printf("Wrote default config to %s", config.GetActiveConfigPath(""))
		return
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var diag *log.Logger
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		diag = logger.NewWithConfig(AppName, log.DebugLevel, true, true, log.TextFormatter)
	} else {
		log.SetLevel(logger.ParseLevel(appConfig.Log.Level))
		if *cliMode {
			diag = logger.Default(AppName)
		} else {
			diag = logger.Stderr(AppName)
		}
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))
	if *debugMode {
		logRuntimeInfo()
	}

	recorder := logger.NewRecorder(appConfig.Server.DiagnosticKeep, log.InfoLevel)
	engine := lookup.NewEngine(logger.Tee{logger.FromLogger(diag), recorder})

	sess := &session{
		cfg:        appConfig,
		configPath: configPath,
		baseDir:    *baseDir,
		engine:     engine,
	}
	if sess.baseDir == "" {
		sess.baseDir = config.BaseDir(configPath)
	}
	log.Debugf("Resolving sources against: (%s)", sess.baseDir)

	if len(appConfig.Sources) == 0 {
		log.Warn("No [[sources]] configured, running with empty dict...")
	}
	for _, path := range appConfig.MissingSources(sess.baseDir) {
		log.Errorf("Source file not found: %s", path)
	}
	engine.Load(appConfig.Descriptors(sess.baseDir))

	if *token != "" {
		res, ok := engine.Resolve(*token)
		if !ok {
			log.Warnf("No entry for '%s'", *token)
			os.Exit(1)
		}
		fmt.Println(res.Render())
		return
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine, cli.Options{
			MaxTokenLength: appConfig.Server.MaxTokenLength,
			CompleteLimit:  appConfig.CLI.CompleteLimit,
			ShowTiming:     appConfig.CLI.ShowTiming,
			Reload:         sess.reload,
		})
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	opts := server.OptionsFrom(appConfig.Server)
	opts.Recorder = recorder
	opts.Reload = sess.reload
	srv := server.NewServer(engine, opts)

	if *watchFlag || appConfig.Server.Watch {
		startWatcher(ctx, sess, time.Duration(appConfig.Server.DebounceMs)*time.Millisecond, srv.PushReload)
	}

	if *debugMode {
		showStartupInfo(engine.Stats())
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// startWatcher rebuilds on change and re-tracks the sources the new config names.
func startWatcher(ctx context.Context, sess *session, debounce time.Duration, push func()) {
	var w *watch.Watcher
	w, err := watch.New(sess.files(), debounce, func() {
		push()
		if err := w.Track(sess.files()); err != nil {
			log.Warnf("Failed to update watched files: %v", err)
		}
	})
	if err != nil {
		log.Errorf("File watching disabled: %v", err)
		return
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Errorf("Watcher stopped: %v", err)
		}
	}()
	log.Debugf("Watching config and sources, debounce=[%v]", debounce)
}

// logRuntimeInfo prints where the binary runs from and what it sees.
func logRuntimeInfo() {
	locator, err := utils.NewConfigLocator()
	if err != nil {
		log.Debugf("No runtime info: %v", err)
		return
	}
	info := locator.RuntimeInfo()
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Debug("runtime", k, info[k])
	}
}

// printVersion shows the styled version banner on stderr.
func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ exdict ] Hover docs from your CSV and TSV dictionaries")
	banner.Print("", "version", Version)
	for _, info := range source.ListSupportedFormats() {
		banner.Print(info.Description, "format", info.Format, "extensions", strings.Join(info.Extensions, " "))
	}
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(stats lookup.Stats) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println("  exdict   ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("entries: %d from %d sources (%d failed)", stats.Entries, stats.Sources, stats.FailedSources)
	log.Info("status: ready")
	println("===========")

	log.SetLevel(currentLevel)
}
