// Package bench drives a wordrank server with concurrent clients and reports throughput.
package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bastiangx/wordrank/pkg/client"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options configure a run.
type Options struct {
	Addr     string
	Prefixes []string
	// Workers defaults to twice the CPU count.
	Workers int
	Limit   int
	// ReportEvery logs a worker's rate each time it completes this many queries.
	ReportEvery int
	// Stagger delays each worker start after the previous one.
	Stagger time.Duration
}

// WorkerResult is one worker's outcome.
type WorkerResult struct {
	Queries int
	Elapsed time.Duration
	Err     error
}

// Rate returns queries per second.
func (w WorkerResult) Rate() float64 {
	if w.Elapsed <= 0 {
		return 0
	}
	return float64(w.Queries) / w.Elapsed.Seconds()
}

// Result sums all workers.
type Result struct {
	Workers []WorkerResult
	Queries int
	// Rate is the sum of the worker rates.
	Rate float64
}

var errNoPrefixes = errors.New("bench: no sample prefixes")

// Run starts the workers and waits for all of them. A worker that fails keeps
// its partial count; Run reports an error only if every worker failed.
func Run(ctx context.Context, opts Options, logger *log.Logger) (Result, error) {
	if len(opts.Prefixes) == 0 {
		return Result{}, errNoPrefixes
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU() * 2
	}
	if logger == nil {
		logger = log.Default()
	}
	p := message.NewPrinter(language.English)

	results := make([]WorkerResult, opts.Workers)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = runWorker(ctx, id, opts, logger, p)
		}(i)

		if i < opts.Workers-1 && opts.Stagger > 0 {
			select {
			case <-time.After(opts.Stagger):
			case <-ctx.Done():
			}
		}
	}
	wg.Wait()

	res := Result{Workers: results}
	failed := 0
	var firstErr error
	for i, w := range results {
		if w.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("worker %d: %w", i, w.Err)
			}
			logger.Error(p.Sprintf("worker %d stopped after %d queries", i, w.Queries), "err", w.Err)
		}
		res.Queries += w.Queries
		res.Rate += w.Rate()
	}
	logger.Info(p.Sprintf("total: %d queries, %.0f queries/sec", res.Queries, res.Rate))

	if failed == len(results) {
		return res, firstErr
	}
	return res, nil
}

func runWorker(ctx context.Context, id int, opts Options, logger *log.Logger, p *message.Printer) WorkerResult {
	var wr WorkerResult
	c, err := client.Dial(ctx, opts.Addr)
	if err != nil {
		wr.Err = err
		return wr
	}
	defer c.Close()

	start := time.Now()
	for _, prefix := range opts.Prefixes {
		if ctx.Err() != nil {
			break
		}
		if _, err := c.Search(ctx, prefix, opts.Limit); err != nil {
			var se *client.ServerError
			if !errors.As(err, &se) {
				wr.Err = err
				break
			}
			logger.Debugf("worker %d: %q rejected: %v", id, prefix, err)
		}
		wr.Queries++
		if opts.ReportEvery > 0 && wr.Queries%opts.ReportEvery == 0 {
			wr.Elapsed = time.Since(start)
			logger.Info(p.Sprintf("worker %d: %.0f queries/sec", id, wr.Rate()))
		}
	}
	wr.Elapsed = time.Since(start)
	return wr
}
