// Package goref is a reference fact.Analyzer implementation for Go
// source, built on tree-sitter. It exists so the pipeline is runnable
// end to end without requiring an external analyzer process; the
// Lisp-like source language the core's algorithms target is otherwise
// served by a collaborator outside this module.
//
// Scope is deliberately narrow: goref resolves usages only within the
// same file (a reference to a name declared in another file of the same
// package is not reported, and there is no import resolution), which is
// sufficient to exercise the symbol graph, hasher, and selector against
// a real, parseable language.
package goref

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/arlojordan/selectest/internal/fact"
)

// Dialect is the fact-stream dialect tag goref emits.
const Dialect = "go"

// Analyzer walks a set of .go files and emits fact.Facts via tree-sitter.
type Analyzer struct{}

// New returns a ready-to-use Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

var _ fact.Analyzer = (*Analyzer)(nil)

// Analyze parses every path ending in ".go" and extracts package
// clauses, top-level definitions, and within-package usages. config is
// unused — goref has no analyzer-specific options.
func (a *Analyzer) Analyze(ctx context.Context, paths []string, config map[string]any) (fact.Facts, error) {
	var out fact.Facts

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	for _, path := range paths {
		if filepath.Ext(path) != ".go" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue // unreadable file: contributes nothing, never an error.
		}
		tree, err := parser.ParseCtx(ctx, nil, content)
		if err != nil {
			continue
		}
		fileFacts, err := extractFile(path, content, tree.RootNode())
		if err != nil {
			return fact.Facts{}, fmt.Errorf("goref: %s: %w", path, err)
		}
		out.Definitions = append(out.Definitions, fileFacts.Definitions...)
		out.Usages = append(out.Usages, fileFacts.Usages...)
		out.Namespaces = append(out.Namespaces, fileFacts.Namespaces...)
	}

	return out, nil
}
