package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/compare"
	"github.com/hashtree/hashtree/pkg/config"
)

// runCompare diffs two databases. Exit code 1 signals any changed,
// removed, or added entries.
func runCompare(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "hashtree compare: expected DB1 DB2")
		return exitUsage
	}

	report, err := compare.Run(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return fail("compare", err)
	}

	if *jsonOut {
		printJSON(envelope{Report: report})
	} else {
		fmt.Printf("%d unchanged, %d changed, %d removed, %d added\n",
			report.Unchanged, len(report.Changed), len(report.Removed), len(report.Added))
		for _, c := range report.Changed {
			fmt.Printf("CHANGED %s  %s -> %s\n", c.Path, c.Hash1, c.Hash2)
		}
		for _, p := range report.Removed {
			fmt.Printf("REMOVED %s\n", p)
		}
		for _, p := range report.Added {
			fmt.Printf("ADDED %s\n", p)
		}
		for _, g := range report.Duplicates1 {
			fmt.Printf("DUPLICATE(db1) %s: %v\n", g.Digest, g.Paths)
		}
		for _, g := range report.Duplicates2 {
			fmt.Printf("DUPLICATE(db2) %s: %v\n", g.Digest, g.Paths)
		}
	}

	if len(report.Changed) > 0 || len(report.Removed) > 0 || len(report.Added) > 0 {
		return exitLogicalDiff
	}
	return exitSuccess
}
