package source

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/augurdev/augur/pkg/models"
)

// ExportedDeclarations builds the exported-symbol table for the unit:
// export name to the declarations backing it. Overloads and merged
// declarations accumulate under one name.
func (u *Unit) ExportedDeclarations() map[string][]models.Declaration {
	decls := make(map[string][]models.Declaration)

	for _, export := range u.DescendantsOfKind("export_statement") {
		// Re-exports (export { X } from './y') declare nothing locally;
		// their names surface through ReferencedNames instead.
		if export.ChildByFieldName("source") != nil {
			continue
		}

		if decl := export.ChildByFieldName("declaration"); decl != nil {
			u.collectDeclaration(decl, decls)
			continue
		}

		// export { a, b as c } referencing local declarations. The local
		// (pre-alias) name is the exported symbol we can resolve.
		for _, spec := range childrenOfType(export, "export_specifier") {
			name := u.Text(spec.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			decls[name] = append(decls[name], models.Declaration{
				Kind:      models.KindSymbol,
				StartLine: StartLine(spec),
				EndLine:   EndLine(spec),
			})
		}

		// export default <expression> without a named declaration.
		if hasChildToken(export, "default") && len(childrenOfType(export, "export_specifier")) == 0 {
			decls["default"] = append(decls["default"], models.Declaration{
				Kind:      models.KindSymbol,
				StartLine: StartLine(export),
				EndLine:   EndLine(export),
			})
		}
	}

	return decls
}

// collectDeclaration maps one exported declaration node to symbol entries.
func (u *Unit) collectDeclaration(decl *sitter.Node, decls map[string][]models.Declaration) {
	kind := declarationKind(decl.Type())

	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		for _, declarator := range childrenOfType(decl, "variable_declarator") {
			name := u.Text(declarator.ChildByFieldName("name"))
			if name == "" {
				continue
			}
			decls[name] = append(decls[name], models.Declaration{
				Kind:      models.KindVariable,
				StartLine: StartLine(declarator),
				EndLine:   EndLine(declarator),
			})
		}
	default:
		name := u.Text(decl.ChildByFieldName("name"))
		if name == "" {
			name = "default"
		}
		decls[name] = append(decls[name], models.Declaration{
			Kind:      kind,
			StartLine: StartLine(decl),
			EndLine:   EndLine(decl),
		})
	}
}

// declarationKind maps AST declaration node types onto the closed symbol
// kind set.
func declarationKind(nodeType string) models.SymbolKind {
	switch nodeType {
	case "function_declaration", "generator_function_declaration":
		return models.KindFunction
	case "class_declaration", "abstract_class_declaration":
		return models.KindClass
	case "interface_declaration":
		return models.KindInterface
	case "type_alias_declaration", "enum_declaration":
		return models.KindType
	case "lexical_declaration", "variable_declaration":
		return models.KindVariable
	default:
		return models.KindSymbol
	}
}

// ReferencedNames returns every symbol name this unit references in another
// file: named imports, default/namespace import bindings, and re-export
// clauses. Wildcard re-exports carry no names and contribute nothing.
func (u *Unit) ReferencedNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, imp := range u.DescendantsOfKind("import_statement") {
		Walk(imp, u.source, func(node *sitter.Node, _ []byte) bool {
			switch node.Type() {
			case "import_specifier":
				add(u.Text(node.ChildByFieldName("name")))
			case "namespace_import":
				// import * as ns: the bound name is local, but property
				// access through it is a dynamic reference we cannot
				// resolve name-by-name. Record the binding itself.
				for i := range int(node.ChildCount()) {
					if child := node.Child(i); child.Type() == "identifier" {
						add(u.Text(child))
					}
				}
			case "import_clause":
				// Default import binding: a bare identifier child.
				for i := range int(node.ChildCount()) {
					if child := node.Child(i); child.Type() == "identifier" {
						add(u.Text(child))
					}
				}
			}
			return true
		})
	}

	// Re-export clauses reference the origin file's symbols.
	for _, export := range u.DescendantsOfKind("export_statement") {
		if export.ChildByFieldName("source") == nil {
			continue
		}
		for _, spec := range childrenOfType(export, "export_specifier") {
			add(u.Text(spec.ChildByFieldName("name")))
		}
	}

	// Dynamic loads: const { a, b } = require("./m") or import("./m")
	// destructured into named bindings. Only destructured names are
	// resolvable; a bare module-object binding stays dynamic.
	for _, call := range u.DescendantsOfKind("call_expression") {
		callee := u.Text(call.ChildByFieldName("function"))
		if callee != "require" && callee != "import" {
			continue
		}
		parent := call.Parent()
		for parent != nil && parent.Type() == "await_expression" {
			parent = parent.Parent()
		}
		if parent == nil || parent.Type() != "variable_declarator" {
			continue
		}
		pattern := parent.ChildByFieldName("name")
		if pattern == nil || pattern.Type() != "object_pattern" {
			continue
		}
		for i := range int(pattern.ChildCount()) {
			child := pattern.Child(i)
			switch child.Type() {
			case "shorthand_property_identifier_pattern":
				add(u.Text(child))
			case "pair_pattern":
				add(u.Text(child.ChildByFieldName("key")))
			}
		}
	}

	return names
}

// childrenOfType returns descendant nodes of the given type, searching one
// clause level deep (export/import clauses wrap their specifiers).
func childrenOfType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	var visit func(n *sitter.Node, depth int)
	visit = func(n *sitter.Node, depth int) {
		if depth > 2 {
			return
		}
		for i := range int(n.ChildCount()) {
			child := n.Child(i)
			if child.Type() == nodeType {
				results = append(results, child)
				continue
			}
			visit(child, depth+1)
		}
	}
	visit(node, 0)
	return results
}

// hasChildToken reports whether node has a direct child token of the given
// type.
func hasChildToken(node *sitter.Node, token string) bool {
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}
