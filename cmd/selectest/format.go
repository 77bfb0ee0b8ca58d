package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arlojordan/selectest/internal/fqs"
)

// emitJSON marshals v with indentation and writes it to stdout.
func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitSymbolList prints syms one per line in text format, or as a JSON
// array of strings in json format.
func emitSymbolList(syms []fqs.FQS) error {
	if flagFormat == "json" {
		return emitJSON(fqsStrings(syms))
	}
	for _, s := range syms {
		fmt.Fprintln(os.Stdout, s)
	}
	return nil
}
