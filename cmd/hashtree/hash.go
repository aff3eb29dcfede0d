package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/digest"
	"github.com/hashtree/hashtree/pkg/progress"
	"github.com/hashtree/hashtree/pkg/wildcard"
)

// algoResult is one algorithm's digest for one file.
type algoResult struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Mode      string `json:"mode"`
}

// fileResult is one file's hash, the "files" payload element for the
// default subcommand's --json output.
type fileResult struct {
	Path    string       `json:"path"`
	Results []algoResult `json:"digests"`
}

// runHash is the default subcommand: it expands its arguments as
// wildcard patterns (a plain existing path matches itself; an argument
// that matches nothing fails the whole run) and hashes each resolved
// file.
func runHash(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("hashtree", flag.ContinueOnError)
	algo := fs.String("algo", cfg.Hash().Default, "algorithm name")
	fast := fs.Bool("fast", false, "use fast (sampled) hashing mode")
	text := fs.String("text", "", "hash a text string instead of a file")
	jsonOut := fs.Bool("json", false, "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	computer := digest.New()

	if *text != "" {
		return hashInline(computer, []byte(*text), "<text>", *algo, *fast, *jsonOut)
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		// No file arguments: hash standard input, for piping.
		return hashStdin(computer, *algo, *fast, *jsonOut)
	}

	paths, err := wildcard.Expand(patterns, true)
	if err != nil {
		return fail("hash", err)
	}
	var files []fileResult
	var fileErrors []progress.FileError

	for _, p := range paths {
		results, err := computer.HashFile(p, []string{*algo}, *fast)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hashtree: %s: %v\n", p, err)
			fileErrors = append(fileErrors, progress.FileError{Path: p, Err: err})
			continue
		}
		fr := fileResult{Path: p}
		for _, r := range results {
			fr.Results = append(fr.Results, algoResult{Algorithm: r.Algorithm, Digest: r.HexDigest, Mode: string(r.Mode)})
		}
		files = append(files, fr)
	}

	if *jsonOut {
		printJSON(envelope{Files: files, Errors: jsonErrors(fileErrors)})
	} else {
		for _, fr := range files {
			for _, r := range fr.Results {
				fmt.Printf("%s  %s  %s  %s\n", r.Digest, r.Algorithm, r.Mode, fr.Path)
			}
		}
	}

	if len(fileErrors) > 0 {
		return exitIOOrFormatErr
	}
	return exitSuccess
}

// hashInline hashes an in-memory text argument. Fast mode never applies
// to text input.
func hashInline(computer *digest.Computer, data []byte, label, algo string, fast, jsonOut bool) int {
	if fast {
		fmt.Fprintln(os.Stderr, "hashtree: fast mode is not applicable to text input")
		return exitUsage
	}
	results, err := computer.HashBytes(data, []string{algo})
	if err != nil {
		return fail("hash", err)
	}
	return emitSingle(results, label, jsonOut)
}

// hashStdin streams standard input through the digest computer.
func hashStdin(computer *digest.Computer, algo string, fast, jsonOut bool) int {
	results, err := computer.HashStream(os.Stdin, []string{algo}, fast)
	if err != nil {
		return fail("hash", err)
	}
	return emitSingle(results, "<stdin>", jsonOut)
}

func emitSingle(results []digest.Result, label string, jsonOut bool) int {
	fr := fileResult{Path: label}
	for _, r := range results {
		fr.Results = append(fr.Results, algoResult{Algorithm: r.Algorithm, Digest: r.HexDigest, Mode: string(r.Mode)})
	}
	if jsonOut {
		printJSON(envelope{Files: []fileResult{fr}})
	} else {
		for _, r := range fr.Results {
			fmt.Printf("%s  %s  %s  %s\n", r.Digest, r.Algorithm, r.Mode, fr.Path)
		}
	}
	return exitSuccess
}
