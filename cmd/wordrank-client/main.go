// Copyright 2025 The WordRank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command wordrank-client reads prefixes from stdin, one per line, and prints
// the server's completions for each.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordrank/pkg/client"
	"github.com/charmbracelet/log"
)

func main() {
	addr := flag.String("addr", "localhost:8888", "Server address")
	limit := flag.Int("limit", 10, "Number of suggestions per prefix")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-request timeout")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()
	dialCtx, cancel := context.WithTimeout(ctx, *timeout)
	c, err := client.Dial(dialCtx, *addr)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		prefix := strings.TrimRight(scanner.Text(), "\r")

		reqCtx, cancel := context.WithTimeout(ctx, *timeout)
		suggestions, err := c.Search(reqCtx, prefix, *limit)
		cancel()
		if err != nil {
			log.Errorf("%q: %v", prefix, err)
			continue
		}
		fmt.Fprintln(out, client.Join(suggestions))
		out.Flush()
	}
	if err := scanner.Err(); err != nil {
		log.Errorf("Reading stdin: %v", err)
	}
}
