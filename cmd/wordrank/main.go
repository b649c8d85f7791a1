// Copyright 2025 The WordRank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word completion server and CLI [DBG] application.

WordRank loads a ranked word list once, freezes it into an immutable prefix
index and answers "top K words starting with this prefix" queries, highest
rank first, ties broken by ordinal word order.

# Usage

Serve a dictionary over TCP on the configured address:

	wordrank -data words.in

Read the dictionary from stdin, like the classic test.in pipeline:

	wordrank < test.in

Answer msgpack requests over stdin/stdout for editor integration:

	wordrank -data words.bin -stdio

Run in CLI mode for interactive testing:

	wordrank -data words.in -c -limit 5

Convert a text list into the binary layout:

	wordrank -data words.in -export words.bin

# Dictionary sources

The -data flag takes a text file, a binary .bin file, a directory of
dict_NNNN.bin chunks, or "-" for stdin. A text file is a count N, N lines
of "<word> <rank>", then optionally a count M and M sample prefixes.

# Configuration

Runtime configuration is a TOML file read from -config or from
<UserConfigDir>/wordrank/config.toml, falling back to built-in defaults:

	[server]
	addr = "localhost:8888"
	default_limit = 10
	max_limit = 64
	max_prefix = 64

	[dict]
	path = "-"

	[cache]
	max_entries = 4096

Flags override the file.

# Command Line Flags

	-config string
	    Path to a TOML config file
	-data string
	    Dictionary file, chunk directory or "-" for stdin
	-addr string
	    TCP listen address
	-stdio
	    Serve msgpack over stdin/stdout instead of TCP
	-c  Run CLI mode instead of server mode
	-limit int
	    Number of suggestions to return
	-export string
	    Write the loaded dictionary as a binary file and exit
	-init-config
	    Write a default config file if missing, then exit
	-d  Enable debug mode with detailed logging
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordrank/internal/cli"
	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "wordrank"
	gh      = "https://github.com/bastiangx/wordrank"
)

// stdio joins stdin and stdout into one stream for ServeConn.
type stdio struct {
	io.Reader
	io.Writer
}

// main only manages the flow: config, loading, then server or CLI.
func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	dataPath := flag.String("data", "", "Dictionary file, chunk directory or \"-\" for stdin")
	addr := flag.String("addr", "", "TCP listen address")
	stdioMode := flag.Bool("stdio", false, "Serve msgpack over stdin/stdout instead of TCP")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of suggestions to return (default from config)")
	exportPath := flag.String("export", "", "Write the loaded dictionary as a binary file and exit")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	showVersion := flag.Bool("version", false, "Show current version")
	initConfig := flag.Bool("init-config", false, "Write a default config file (at -config or the default path) if missing, then exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *initConfig {
		if err := writeDefaultConfig(*configPath); err != nil {
			log.Fatalf("Failed to init config: %v", err)
		}
		return
	}

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if usedConfig != "" {
		log.Debugf("Using config file: (%s)", usedConfig)
	}
	if *dataPath != "" {
		cfg.Dict.Path = *dataPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *limit > 0 {
		cfg.Server.DefaultLimit = *limit
	}

	if cfg.Dict.Path == dictionary.StdinPath && (*stdioMode || *cliMode) {
		log.Fatal("Reading the dictionary from stdin cannot be combined with -stdio or -c")
	}

	trie := suggest.NewTrie()
	var sink dictionary.Inserter = trie
	var collected *dictionary.Collector
	if *exportPath != "" {
		collected = &dictionary.Collector{}
		sink = collected
	}

	src, err := dictionary.LoadFile(cfg.Dict.Path, sink)
	if err != nil {
		log.Fatalf("Failed to load dictionary %s: %v", cfg.Dict.Path, err)
	}
	log.Debugf("Loaded %d entries (%s), %d sample prefixes", src.Words, src.Format, len(src.Prefixes))

	if collected != nil {
		if err := export(*exportPath, collected.Entries); err != nil {
			log.Fatalf("Failed to export dictionary: %v", err)
		}
		log.Infof("Exported %d entries to %s", len(collected.Entries), *exportPath)
		return
	}

	index := trie.Freeze()
	var searcher suggest.Searcher = index
	if cfg.Cache.MaxEntries > 0 {
		searcher = suggest.NewHotCache(index, cfg.Cache.MaxEntries)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(searcher, cfg.Server.DefaultLimit, cfg.Server.MaxPrefix)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(searcher, cfg.Server, logger.New("server"))

	if *stdioMode {
		log.Debug("spawning IPC on stdio")
		if err := srv.ServeConn(ctx, stdio{os.Stdin, os.Stdout}); err != nil {
			log.Fatalf("IPC error: %v", err)
		}
		return
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.Server.Addr, err)
	}
	showStartupInfo(ln.Addr(), index)

	if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Fatalf("Server error: %v", err)
	}
	fmt.Fprintf(os.Stderr, "\nExiting...\n")
}

// writeDefaultConfig creates the config file with defaults unless it exists.
func writeDefaultConfig(path string) error {
	if path == "" {
		var err error
		if path, err = config.GetDefaultConfigPath(); err != nil {
			return err
		}
	}
	if _, err := config.InitConfig(path); err != nil {
		return err
	}
	// InitConfig falls back to in-memory defaults when it cannot write
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config not written: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Config file: %s\n", path)
	return nil
}

func export(path string, entries []dictionary.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dictionary.WriteBinary(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
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
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordRank ] Ranked prefix completions from a frozen trie")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(addr net.Addr, index *suggest.Index) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	banner := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Border(lipgloss.NormalBorder()).
		Render(" WordRank ")
	fmt.Fprintln(os.Stderr, banner)

	stats := index.Stats()
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("words: %d, nodes: %d", stats["totalWords"], stats["totalNodes"])
	log.Infof("listening: ( %s )", addr)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
