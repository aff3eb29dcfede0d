package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/analyze"
	"github.com/hashtree/hashtree/pkg/config"
)

// runAnalyze loads a single database and prints its statistics.
func runAnalyze(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "hashtree analyze: expected exactly one database path")
		return exitUsage
	}

	report, err := analyze.Run(fs.Arg(0))
	if err != nil {
		return fail("analyze", err)
	}

	if *jsonOut {
		printJSON(envelope{Report: report})
		return exitSuccess
	}

	s := report.Stats
	fmt.Printf("Database: %s\n", report.DatabasePath)
	fmt.Printf("Size:     %d bytes\n", s.DatabaseFileSize)
	fmt.Println()
	fmt.Printf("Total files:      %d\n", s.TotalFiles)
	fmt.Printf("Unique hashes:    %d\n", s.UniqueHashes)
	fmt.Printf("Algorithms:       %v\n", s.Algorithms)
	fmt.Printf("Fast mode:        %d files\n", s.FastModeFiles)
	fmt.Printf("Normal mode:      %d files\n", s.NormalModeFiles)
	if s.HasSizes {
		fmt.Printf("Total file size:  %d bytes\n", s.TotalFileSize)
	}
	if s.DuplicateGroups > 0 {
		fmt.Printf("\n%d duplicate groups (%d files)\n", s.DuplicateGroups, s.DuplicateFiles)
		if s.HasSizes {
			fmt.Printf("Potential savings: %d bytes\n", s.PotentialSavings)
		}
		for _, g := range report.Duplicates {
			fmt.Printf("\n%s (%d files):\n", g.Digest, g.Count)
			for _, p := range g.Paths {
				fmt.Printf("  %s\n", p)
			}
		}
	} else {
		fmt.Println("\nNo duplicates found.")
	}
	return exitSuccess
}
