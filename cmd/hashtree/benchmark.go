package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/benchmark"
	"github.com/hashtree/hashtree/pkg/config"
)

// runBenchmark times every registered algorithm over a synthetic
// in-memory buffer.
func runBenchmark(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	sizeStr := fs.String("size", "100M", "synthetic buffer size")
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	size, err := config.ParseHumanSize(*sizeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashtree benchmark: %v\n", err)
		return exitUsage
	}

	results, err := benchmark.Run(benchmark.Options{BufferSize: size, Algorithms: fs.Args()})
	if err != nil {
		return fail("benchmark", err)
	}

	if *jsonOut {
		printJSON(envelope{Results: results})
	} else {
		for _, r := range results {
			fmt.Printf("%-10s %10.2f MB/s\n", r.Algorithm, r.MBPerSecond)
		}
	}
	return exitSuccess
}
