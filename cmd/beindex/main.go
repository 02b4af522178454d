// Command beindex builds an index from a document corpus and either
// reports build statistics, serves it over HTTP, or benchmarks concurrent
// retrieval against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kestrelindex/beindex/internal/beindex"
	"github.com/kestrelindex/beindex/internal/loader"
	"github.com/kestrelindex/beindex/internal/server"
	"github.com/kestrelindex/beindex/pkg/config"
	apperrors "github.com/kestrelindex/beindex/pkg/errors"
	"github.com/kestrelindex/beindex/pkg/health"
	"github.com/kestrelindex/beindex/pkg/logger"
	"github.com/kestrelindex/beindex/pkg/metrics"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: beindex <build|serve|query-bench> [flags]")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "query-bench":
		err = runQueryBench(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "beindex: %v\n", err)
		os.Exit(1)
	}
}

// loadAndBuild loads a document corpus and builds an Index against an
// already-loaded config. If m is non-nil, it is fed the build-time
// collectors (documents/conjunctions indexed, build duration, posting-list
// size distribution) before returning. Only serve passes a non-nil m;
// build and query-bench pass nil and record no metrics.
func loadAndBuild(cfg *config.Config, m *metrics.Metrics) (*beindex.Index[string], time.Duration, error) {
	slog.Info("loading corpus", "path", cfg.Corpus.Path)
	docs, err := loader.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("loading corpus: %w", err)
	}

	start := time.Now()
	idx, err := beindex.Build(docs)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		return nil, 0, fmt.Errorf("building index (status %d): %w", status, err)
	}
	elapsed := time.Since(start)
	slog.Info("index built", "documents", len(docs), "duration_ms", elapsed.Milliseconds())

	if m != nil {
		m.BuildDuration.Observe(elapsed.Seconds())
		m.DocumentsIndexedTotal.Add(float64(len(docs)))
		conjunctions := 0
		for _, doc := range docs {
			conjunctions += len(doc.Conjunctions)
		}
		m.ConjunctionsIndexed.Add(float64(conjunctions))
		for size, count := range idx.PostingListEntryCounts() {
			m.PostingListEntries.WithLabelValues(strconv.Itoa(size)).Set(float64(count))
		}
	}

	return idx, elapsed, nil
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	_, elapsed, err := loadAndBuild(cfg, nil)
	if err != nil {
		return err
	}
	fmt.Printf("build completed in %s\n", elapsed)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var m *metrics.Metrics
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	idx, _, err := loadAndBuild(cfg, m)
	if err != nil {
		return err
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})

	handler := server.New(idx, checker, m)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		if err := server.Shutdown(context.Background(), httpServer, cfg.Server.ShutdownTimeout); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(context.Background()); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("beindex serving", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("beindex stopped")
	return nil
}

// runQueryBench fires concurrent Retrieve calls against one shared,
// already-built Index using errgroup — the concurrency contract from §5
// (multiple retrievals may run simultaneously as long as each uses its own
// working state) exercised directly, each goroutine owning its own
// ResultSet and Assignment.
func runQueryBench(args []string) error {
	fs := flag.NewFlagSet("query-bench", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	workers := fs.Int("workers", 8, "number of concurrent retrieval workers")
	queriesPerWorker := fs.Int("queries", 1000, "number of retrievals per worker")
	assignKey := fs.String("key", "", "predicate key to query")
	assignInt := fs.Int64("int-value", 0, "int value to assign to -key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assignKey == "" {
		return fmt.Errorf("query-bench requires -key")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	idx, _, err := loadAndBuild(cfg, nil)
	if err != nil {
		return err
	}

	latencies := make([][]time.Duration, *workers)
	group, _ := errgroup.WithContext(context.Background())
	for w := 0; w < *workers; w++ {
		w := w
		group.Go(func() error {
			local := make([]time.Duration, 0, *queriesPerWorker)
			result := beindex.NewResultSet()
			assignment := beindex.NewMapAssignment[string]().Bind(*assignKey, beindex.Ints(*assignInt))
			for i := 0; i < *queriesPerWorker; i++ {
				result.Reset()
				start := time.Now()
				idx.Retrieve(result, assignment)
				local = append(local, time.Since(start))
			}
			latencies[w] = local
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	all := make([]time.Duration, 0, *workers * *queriesPerWorker)
	for _, l := range latencies {
		all = append(all, l...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	fmt.Printf("retrievals: %d, workers: %d\n", len(all), *workers)
	fmt.Printf("p50: %s\n", percentile(all, 0.50))
	fmt.Printf("p95: %s\n", percentile(all, 0.95))
	fmt.Printf("p99: %s\n", percentile(all, 0.99))
	return nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
