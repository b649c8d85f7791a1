// Copyright 2025 The WordRank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Command wordrank-bench replays the sample prefixes of a text dictionary
against a server from many concurrent clients and reports queries/sec.

Without -addr it loads the dictionary itself and hosts the server in-process
on a loopback port:

	wordrank-bench -data test.in

Against a running server:

	wordrank-bench -data test.in -addr localhost:8888 -workers 16
*/
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordrank/internal/bench"
	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code, so deferred shutdown of an in-process server
// completes before the process exits.
func run(args []string) int {
	fs := flag.NewFlagSet("wordrank-bench", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML config file")
	dataPath := fs.String("data", "", "Text dictionary with a sample prefix section")
	addr := fs.String("addr", "", "Server address; empty hosts one in-process")
	workers := fs.Int("workers", 0, "Concurrent clients (default from config, 0 = 2x CPUs)")
	limit := fs.Int("limit", 0, "Suggestions per query (default from config)")
	debugMode := fs.Bool("d", false, "Toggle debug mode")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	cfg, _, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		return 1
	}
	if *dataPath != "" {
		cfg.Dict.Path = *dataPath
	}
	if *workers > 0 {
		cfg.Bench.Workers = *workers
	}
	if *limit > 0 {
		cfg.Bench.Limit = *limit
	}

	trie := suggest.NewTrie()
	src, err := dictionary.LoadFile(cfg.Dict.Path, trie)
	if err != nil {
		log.Errorf("Failed to load dictionary %s: %v", cfg.Dict.Path, err)
		return 1
	}
	if len(src.Prefixes) == 0 {
		log.Errorf("%s has no sample prefixes to replay", cfg.Dict.Path)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	benchLog := logger.New("bench")
	benchLog.SetLevel(log.InfoLevel)

	target := *addr
	if target == "" {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Errorf("Failed to listen: %v", err)
			return 1
		}
		srv := server.NewServer(trie.Freeze(), cfg.Server, logger.New("server"))
		serveCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Serve(serveCtx, ln); err != nil {
				log.Errorf("Server error: %v", err)
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
		target = ln.Addr().String()
	}

	_, err = bench.Run(ctx, bench.Options{
		Addr:        target,
		Prefixes:    src.Prefixes,
		Workers:     cfg.Bench.Workers,
		Limit:       cfg.Bench.Limit,
		ReportEvery: cfg.Bench.ReportEvery,
		Stagger:     cfg.Bench.Stagger(),
	}, benchLog)
	if err != nil {
		log.Errorf("Benchmark failed: %v", err)
		return 1
	}
	return 0
}
