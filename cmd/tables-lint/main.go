// cmd/tables-lint - checks card generation table overrides
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"f1cards/cardgen"
)

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		if p := os.Getenv("CARD_TABLES_PATH"); p != "" {
			files = []string{p}
		}
	}
	if len(files) == 0 {
		fmt.Println("usage: tables-lint <tables.yaml>... (or set CARD_TABLES_PATH)")
		os.Exit(2)
	}
	os.Exit(lint(os.Stdout, files))
}

// lint reports on each file and returns the process exit code.
func lint(w io.Writer, files []string) int {
	exitCode := 0
	for _, f := range files {
		tables, err := cardgen.LoadTables(f)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", f, err)
			exitCode = 1
			continue
		}

		err = tables.Validate()
		var cfgErr *cardgen.ConfigError
		switch {
		case err == nil:
			fmt.Fprintf(w, "%s: OK\n", f)
			for _, tier := range cardgen.Tiers() {
				fmt.Fprintf(w, "  %-10s total weight %d\n", tier, tables.TotalWeight(tier))
			}
		case errors.As(err, &cfgErr):
			for _, p := range cfgErr.Problems {
				fmt.Fprintf(w, "%s: %s\n", f, p)
			}
			exitCode = 1
		default:
			fmt.Fprintf(w, "%s: %v\n", f, err)
			exitCode = 1
		}
	}
	return exitCode
}
