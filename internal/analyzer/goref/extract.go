package goref

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arlojordan/selectest/internal/fact"
)

// extractFile turns one parsed Go file into fact.Facts: a namespace fact
// for the package clause, a definition fact per top-level function,
// method, type, var, and const, and a usage fact for every reference
// inside a definition's body to another top-level name declared in the
// same file.
func extractFile(path string, src []byte, root *sitter.Node) (fact.Facts, error) {
	var out fact.Facts

	pkgName := "main"
	var pkgLine int
	if pkg := findChildType(root, "package_clause"); pkg != nil {
		pkgLine = int(pkg.StartPoint().Row) + 1
		if id := findChildType(pkg, "package_identifier"); id != nil {
			pkgName = text(src, id)
		}
		out.Namespaces = append(out.Namespaces, fact.Namespace{
			Name: pkgName, File: path, StartLine: pkgLine, EndLine: pkgLine, Dialect: Dialect,
		})
	}

	defs, bodies := collectDefinitions(path, pkgName, src, root)
	out.Definitions = append(out.Definitions, defs...)

	topLevel := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		topLevel[d.Name] = struct{}{}
	}

	for _, b := range bodies {
		out.Usages = append(out.Usages, collectUsages(path, pkgName, b.enclosing, src, b.node, topLevel)...)
	}

	return out, nil
}

type bodyScope struct {
	enclosing string // "" means top-level (namespace-scoped) usage site
	node      *sitter.Node
}

// collectDefinitions walks root's direct children for top-level
// declarations and returns both the definition facts and the body nodes
// to scan afterward for usages.
func collectDefinitions(path, pkgName string, src []byte, root *sitter.Node) ([]fact.Definition, []bodyScope) {
	var defs []fact.Definition
	var bodies []bodyScope

	n := int(root.ChildCount())
	for i := 0; i < n; i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_declaration":
			name := childFieldText(src, child, "name")
			if name == "" {
				continue
			}
			defs = append(defs, functionDefinition(path, pkgName, src, child, name))
			if body := child.ChildByFieldName("body"); body != nil {
				bodies = append(bodies, bodyScope{enclosing: name, node: body})
			}
		case "method_declaration":
			name := childFieldText(src, child, "name")
			if name == "" {
				continue
			}
			defs = append(defs, fact.Definition{
				Namespace: pkgName, Name: name, File: path,
				StartLine: int(child.StartPoint().Row) + 1, EndLine: int(child.EndPoint().Row) + 1,
				Dialect: Dialect, Metadata: fact.Meta{},
			})
			if body := child.ChildByFieldName("body"); body != nil {
				bodies = append(bodies, bodyScope{enclosing: name, node: body})
			}
		case "type_declaration":
			for _, spec := range namedChildrenOfType(child, "type_spec") {
				name := childFieldText(src, spec, "name")
				if name == "" {
					continue
				}
				defs = append(defs, fact.Definition{
					Namespace: pkgName, Name: name, File: path,
					StartLine: int(child.StartPoint().Row) + 1, EndLine: int(child.EndPoint().Row) + 1,
					Dialect: Dialect, Metadata: fact.Meta{},
				})
			}
		case "var_declaration", "const_declaration":
			specType := "var_spec"
			if child.Type() == "const_declaration" {
				specType = "const_spec"
			}
			for _, spec := range namedChildrenOfType(child, specType) {
				for _, name := range identifierListNames(src, spec) {
					defs = append(defs, fact.Definition{
						Namespace: pkgName, Name: name, File: path,
						StartLine: int(child.StartPoint().Row) + 1, EndLine: int(child.EndPoint().Row) + 1,
						Dialect: Dialect, Metadata: fact.Meta{},
					})
				}
				if val := spec.ChildByFieldName("value"); val != nil {
					bodies = append(bodies, bodyScope{enclosing: "", node: val})
				}
			}
		}
	}
	return defs, bodies
}

func functionDefinition(path, pkgName string, src []byte, fn *sitter.Node, name string) fact.Definition {
	meta := fact.Meta{}
	if strings.HasPrefix(name, "Test") && hasTestingParam(src, fn) {
		meta["is_test"] = true
	}
	return fact.Definition{
		Namespace: pkgName, Name: name, File: path,
		StartLine: int(fn.StartPoint().Row) + 1, EndLine: int(fn.EndPoint().Row) + 1,
		Dialect: Dialect, Metadata: meta,
	}
}

// hasTestingParam reports whether any of fn's parameter declarations
// mentions testing.T (whatever the parameter's name), following the
// `func TestXxx(t *testing.T)` convention goref uses to identify tests
// without a test-declaring macro to key off of.
func hasTestingParam(src []byte, fn *sitter.Node) bool {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return false
	}
	for _, p := range namedChildrenOfType(params, "parameter_declaration") {
		if strings.Contains(text(src, p), "testing.T") {
			return true
		}
	}
	return false
}

// collectUsages walks scope for identifier nodes matching a name in
// topLevel, emitting one usage fact per match. Every descendant of scope
// is visited, so an identifier in declaration position inside scope (for
// example a local variable that shadows a top-level name) is also
// reported as a usage.
func collectUsages(path, pkgName, enclosing string, src []byte, scope *sitter.Node, topLevel map[string]struct{}) []fact.Usage {
	var out []fact.Usage
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "identifier" {
			name := text(src, n)
			if _, ok := topLevel[name]; ok {
				out = append(out, fact.Usage{
					Namespace: pkgName, Enclosing: enclosing, Target: name, TargetNS: pkgName,
					File: path, Line: int(n.StartPoint().Row) + 1, Dialect: Dialect,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(scope)
	return out
}

func findChildType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func namedChildrenOfType(n *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

func childFieldText(src []byte, n *sitter.Node, field string) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return text(src, c)
}

// identifierListNames extracts the names bound by a var_spec/const_spec,
// which may declare several identifiers at once (`var a, b = 1, 2`). Each
// "name" field is a direct named identifier child of spec; the value
// side of the spec is a separate expression_list node, not a bare
// identifier, so this doesn't need to distinguish declaration position
// from use position.
func identifierListNames(src []byte, spec *sitter.Node) []string {
	var names []string
	for i := 0; i < int(spec.NamedChildCount()); i++ {
		c := spec.NamedChild(i)
		if c.Type() == "identifier" {
			names = append(names, text(src, c))
		}
	}
	return names
}

func text(src []byte, n *sitter.Node) string {
	return string(src[n.StartByte():n.EndByte()])
}
