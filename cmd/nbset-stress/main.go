// cmd/nbset-stress/main.go
//
// nbset-stress drives the concurrent set with a configurable mixed
// workload and reports the final cardinality, operation counters and
// reclamation state.
//
// Usage:
//
//	nbset-stress [--config workload.yaml] [--workers N] [--ops N]
//	             [--keys N] [--verbose]
//
// Flag values override the config file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"nbset/internal/workload"
	"nbset/pkg/nbset"
)

func main() {
	configPath := flag.String("config", "", "YAML workload file")
	workers := flag.Int("workers", 0, "override worker count")
	ops := flag.Int("ops", 0, "override per-worker operation count")
	keys := flag.Int64("keys", 0, "override key range")
	verbose := flag.Bool("verbose", false, "dump full stats structures")
	flag.Parse()

	cfg := workload.Default()
	if *configPath != "" {
		var err error
		cfg, err = workload.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading workload: %v\n", err)
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *ops > 0 {
		cfg.Ops = *ops
	}
	if *keys > 0 {
		cfg.KeyRange = *keys
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("nbset-stress: %d workers x %d ops, keys [0, %d), mix add=%d%% remove=%d%%\n",
		cfg.Workers, cfg.Ops, cfg.KeyRange, cfg.AddPercent, cfg.RemovePercent)

	tree := nbset.New()
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < cfg.Workers; w++ {
		gen := workload.NewGenerator(cfg, w)
		g.Go(func() error {
			for i := 0; i < cfg.Ops; i++ {
				op, key := gen.Next()
				switch op {
				case workload.OpAdd:
					tree.Add(key)
				case workload.OpRemove:
					tree.Remove(key)
				default:
					tree.Contains(key)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	total := cfg.Workers * cfg.Ops
	stats := tree.Stats()
	reclaim := tree.Reclamation()
	reclaim.TryReclaim()

	fmt.Printf("done in %v (%.0f ops/sec)\n", elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("final size: %d\n", tree.Size())
	fmt.Printf("adds=%d removes=%d contains=%d helps=%d retries=%d refreshes=%d\n",
		stats.AddCount, stats.RemoveCount, stats.ContainsCount,
		stats.HelpCount, stats.RetryCount, stats.RefreshCount)
	fmt.Printf("reclaimed=%d pending=%d\n", reclaim.ReclaimedCount(), reclaim.PendingCount())

	if *verbose {
		spew.Fdump(os.Stdout, stats)
	}
}
