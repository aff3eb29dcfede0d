package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/dedup"
	"github.com/hashtree/hashtree/pkg/progress"
)

// runDedup hashes a tree (reusing the scan pipeline) and groups paths
// by digest.
func runDedup(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	algo := fs.String("algo", cfg.Hash().Default, "algorithm name")
	fast := fs.Bool("fast", false, "use fast (sampled) hashing mode")
	hdd := fs.Bool("hdd", cfg.Performance().HDD, "force sequential scheduling")
	workers := fs.Int("workers", cfg.Performance().HashWorkers, "worker pool size (0 = NumCPU)")
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "hashtree dedup: expected exactly one root directory")
		return exitUsage
	}

	var sink progress.Sink = progress.NullSink{}
	if !*jsonOut {
		sink = progress.NewTerminalSink()
	}

	report, err := dedup.Run(dedup.Options{
		Root:           fs.Arg(0),
		Algorithm:      *algo,
		Fast:           *fast,
		HDD:            *hdd,
		Workers:        *workers,
		IgnoreFileName: cfg.Ignore().FileName,
		Sink:           sink,
	})
	if err != nil {
		return fail("dedup", err)
	}

	if *jsonOut {
		printJSON(envelope{Report: report.Groups, Stats: report.Stats})
	} else {
		for _, g := range report.Groups {
			fmt.Printf("%s (%d files):\n", g.Digest, g.Count)
			for _, p := range g.Paths {
				fmt.Printf("  %s\n", p)
			}
		}
	}
	return exitSuccess
}
