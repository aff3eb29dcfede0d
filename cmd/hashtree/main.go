// Command hashtree computes, stores, and verifies file digests over
// trees of files: a thin main() that dispatches on os.Args[1], stdlib
// flag parsing per subcommand, and stderr + exit codes for error
// reporting instead of a framework.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/verbose"
)

const (
	exitSuccess       = 0
	exitLogicalDiff   = 1
	exitUsage         = 2
	exitIOOrFormatErr = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return exitUsage
	}

	if args[0] == "--help" || args[0] == "-h" || args[0] == "help" {
		showHelp()
		return exitSuccess
	}
	if args[0] == "--version" {
		fmt.Println("hashtree 1.0.0")
		return exitSuccess
	}

	cfg := loadConfig()

	switch args[0] {
	case "scan":
		return runScan(cfg, args[1:])
	case "verify":
		return runVerify(cfg, args[1:])
	case "compare":
		return runCompare(cfg, args[1:])
	case "dedup":
		return runDedup(cfg, args[1:])
	case "analyze":
		return runAnalyze(cfg, args[1:])
	case "benchmark":
		return runBenchmark(cfg, args[1:])
	case "list":
		return runList(cfg, args[1:])
	default:
		// No recognized subcommand: treat every argument as a file or
		// wildcard to hash directly, the default (hash) subcommand.
		return runHash(cfg, args)
	}
}

// loadConfig reads .hashtree/config relative to the working directory
// when one exists, falling back to in-memory defaults otherwise. The
// dotdir is only created on an explicit config write, never as a side
// effect of running a subcommand.
func loadConfig() *config.Config {
	if _, err := os.Stat(filepath.Join(".hashtree", "config")); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(".hashtree")
	if err != nil {
		return config.Default()
	}
	verbose.SetLevel(cfg.Verbose().Level)
	verbose.SetDebugFlags(cfg.Verbose().Debug)
	return cfg
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "Usage: hashtree [file|pattern...] | <subcommand> [options]\n")
	fmt.Fprintf(os.Stderr, "Try 'hashtree --help' for more information.\n")
}

func showHelp() {
	fmt.Println("hashtree - compute, store, and verify file digests")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  hashtree FILE...                 Hash one or more files (default subcommand)")
	fmt.Println("  hashtree scan [options] ROOT      Hash a directory tree into a database")
	fmt.Println("  hashtree verify [options] DB ROOT Re-hash a tree and compare against a database")
	fmt.Println("  hashtree compare [options] DB1 DB2  Diff two databases")
	fmt.Println("  hashtree dedup [options] ROOT      Find duplicate files under a tree")
	fmt.Println("  hashtree analyze [--json] DB      Show statistics for a database")
	fmt.Println("  hashtree benchmark [options]      Time every algorithm over a synthetic buffer")
	fmt.Println("  hashtree list [--json]            List registered algorithms")
	fmt.Println()
	fmt.Println("GLOBAL OPTIONS (per subcommand):")
	fmt.Println("  --algo NAME        Algorithm name (default: sha256)")
	fmt.Println("  --text STRING      Hash a text string instead of a file (default subcommand)")
	fmt.Println("  --fast             Use fast (sampled) hashing mode for large files")
	fmt.Println("  --hdd              Force sequential (single-worker) scheduling")
	fmt.Println("  --workers N        Worker pool size (default: number of CPUs)")
	fmt.Println("  --json             Emit a JSON report instead of human-readable text")
	fmt.Println()
	fmt.Println("EXIT CODES:")
	fmt.Println("  0  success")
	fmt.Println("  1  logical mismatch (verify mismatches/missing, compare differences)")
	fmt.Println("  2  usage error")
	fmt.Println("  3  I/O or format error")
}
