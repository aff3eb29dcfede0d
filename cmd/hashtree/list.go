package main

import (
	"flag"
	"fmt"

	"github.com/hashtree/hashtree/pkg/config"
	"github.com/hashtree/hashtree/pkg/registry"
)

// runList dumps the registry's descriptors, a thin read-only view over
// the closed algorithm set.
func runList(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	jsonOut := fs.Bool("json", cfg.Output().Format == "json", "emit JSON output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	descs := registry.List()

	if *jsonOut {
		printJSON(envelope{Algorithms: descs})
	} else {
		for _, d := range descs {
			crypto := "non-crypto"
			if d.Cryptographic {
				crypto = "crypto"
			}
			pq := ""
			if d.PostQuantum {
				pq = "  post-quantum"
			}
			fmt.Printf("%-10s %-8s %4d bits  %s%s\n", d.Name, d.Family, d.OutputBits, crypto, pq)
		}
	}
	return exitSuccess
}
