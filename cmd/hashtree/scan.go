package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/database"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/scan"
	"github.com/hashtree/hashtree/pkg/wildcard"
)

// runScan hashes a directory tree into a database.
func runScan(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	algo := fs.String("algo", cfg.Hash().Default, "algorithm name")
	fast := fs.Bool("fast", false, "use fast (sampled) hashing mode")
	hdd := fs.Bool("hdd", cfg.Performance().HDD, "force sequential scheduling")
	workers := fs.Int("workers", cfg.Performance().HashWorkers, "worker pool size (0 = NumCPU)")
	out := fs.String("out", "", "database output path (required)")
	format := fs.String("format", "line", "database format: line|hashdeep")
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "hashtree scan: expected exactly one root directory or pattern")
		return exitUsage
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "hashtree scan: --out is required")
		return exitUsage
	}

	// The root may be a wildcard expanding to several directories; a
	// plain existing directory expands to itself.
	roots, err := wildcard.Expand([]string{fs.Arg(0)}, true)
	if err != nil {
		return fail("scan", err)
	}

	var sink progress.Sink = progress.NullSink{}
	if !*jsonOut {
		sink = progress.NewTerminalSink()
	}

	merged := database.New()
	var stats progress.Stats
	var fileErrors []progress.FileError
	for _, root := range roots {
		res, err := scan.Run(scan.Options{
			Root:           root,
			Algorithms:     []string{*algo},
			Fast:           *fast,
			HDD:            *hdd,
			Workers:        *workers,
			IgnoreFileName: cfg.Ignore().FileName,
			Sink:           sink,
		})
		if err != nil {
			return fail("scan", err)
		}
		for _, rec := range res.Database.Records() {
			if len(roots) > 1 {
				// Prefix with the matched root so records from different
				// roots cannot collide on a shared relative path.
				rec.Path = filepath.Join(root, rec.Path)
			}
			merged.Put(rec)
		}
		stats.FilesProcessed += res.Stats.FilesProcessed
		stats.FilesFailed += res.Stats.FilesFailed
		stats.TotalBytes += res.Stats.TotalBytes
		stats.Duration += res.Stats.Duration
		fileErrors = append(fileErrors, res.Errors...)
	}

	dbFormat := database.FormatLine
	if *format == "hashdeep" {
		dbFormat = database.FormatHashdeep
	}
	if err := database.Save(*out, merged, database.WriteOptions{Format: dbFormat}); err != nil {
		return fail("scan", err)
	}

	if *jsonOut {
		printJSON(envelope{Stats: stats, Errors: jsonErrors(fileErrors)})
	} else {
		fmt.Printf("scanned %d files (%d failed), %d bytes, in %s\n",
			stats.FilesProcessed, stats.FilesFailed, stats.TotalBytes, stats.Duration)
		for _, fe := range fileErrors {
			fmt.Fprintf(os.Stderr, "hashtree: %s: %v\n", fe.Path, fe.Err)
		}
	}
	return exitSuccess
}
