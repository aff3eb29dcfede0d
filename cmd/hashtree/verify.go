package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/verify"
)

// runVerify re-hashes a tree and compares it against a database. Exit
// code 1 signals mismatches or missing entries.
func runVerify(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	hdd := fs.Bool("hdd", cfg.Performance().HDD, "force sequential scheduling")
	workers := fs.Int("workers", cfg.Performance().HashWorkers, "worker pool size (0 = NumCPU)")
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "hashtree verify: expected DATABASE ROOT")
		return exitUsage
	}

	var sink progress.Sink = progress.NullSink{}
	if !*jsonOut {
		sink = progress.NewTerminalSink()
	}

	report, err := verify.Run(verify.Options{
		DatabasePath:   fs.Arg(0),
		Root:           fs.Arg(1),
		HDD:            *hdd,
		Workers:        *workers,
		IgnoreFileName: cfg.Ignore().FileName,
		Sink:           sink,
	})
	if err != nil {
		return fail("verify", err)
	}

	if *jsonOut {
		printJSON(envelope{Report: report})
	} else {
		fmt.Printf("%d matches, %d mismatches, %d missing, %d new\n",
			report.Matches, len(report.Mismatches), len(report.Missing), len(report.New))
		for _, m := range report.Mismatches {
			fmt.Printf("MISMATCH %s  expected %s  actual %s\n", m.Path, m.Expected, m.Actual)
		}
		for _, p := range report.Missing {
			fmt.Printf("MISSING %s\n", p)
		}
		for _, p := range report.New {
			fmt.Printf("NEW %s\n", p)
		}
	}

	if len(report.Mismatches) > 0 || len(report.Missing) > 0 {
		return exitLogicalDiff
	}
	return exitSuccess
}
