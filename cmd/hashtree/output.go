package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashtree/hashtree/pkg/herrors"
	"github.com/hashtree/hashtree/pkg/progress"
)

// envelope is the top-level JSON object every subcommand's --json
// output emits: metadata.timestamp in RFC 3339 UTC, the
// command-specific payload under files/stats/report/results/algorithms,
// and any per-file errors as a sibling array.
type envelope struct {
	Metadata   metadata    `json:"metadata"`
	Files      interface{} `json:"files,omitempty"`
	Stats      interface{} `json:"stats,omitempty"`
	Report     interface{} `json:"report,omitempty"`
	Results    interface{} `json:"results,omitempty"`
	Algorithms interface{} `json:"algorithms,omitempty"`
	Errors     []jsonError `json:"errors,omitempty"`
}

type metadata struct {
	Timestamp string `json:"timestamp"`
}

// jsonError is one {path, kind, message} entry in the errors array.
type jsonError struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// jsonErrors converts the bounded error log into the wire shape.
func jsonErrors(fileErrors []progress.FileError) []jsonError {
	out := make([]jsonError, 0, len(fileErrors))
	for _, fe := range fileErrors {
		je := jsonError{Path: fe.Path, Message: fe.Err.Error()}
		var herr *herrors.Error
		if errors.As(fe.Err, &herr) {
			je.Kind = string(herr.Kind)
		}
		out = append(out, je)
	}
	return out
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func printJSON(v envelope) {
	v.Metadata.Timestamp = nowRFC3339()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// exitCodeForError maps a core error to an exit code: usage-shaped
// kinds return 2, everything else from the core is an I/O or format
// failure and returns 3.
func exitCodeForError(err error) int {
	switch {
	case herrors.HasKind(err, herrors.PatternSyntax),
		herrors.HasKind(err, herrors.NoMatches),
		herrors.HasKind(err, herrors.UnsupportedMode):
		return exitUsage
	default:
		return exitIOOrFormatErr
	}
}

func fail(prog string, err error) int {
	fmt.Fprintf(os.Stderr, "hashtree: %s: %v\n", prog, err)
	return exitCodeForError(err)
}
