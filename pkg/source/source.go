// Package source is the workspace source-model provider. It parses
// TypeScript and JavaScript files with tree-sitter and exposes the
// declaration, export, and reference facts the analyzers consume. Analyzers
// never touch source text directly; everything goes through a Unit.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// Parser wraps tree-sitter for the JS/TS language family.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new parser instance. Parsers are not safe for concurrent
// use; create one per worker.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Load reads and parses a source file.
func (p *Parser) Load(path string) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	return p.Parse(src, lang, path)
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(src []byte, lang Language, path string) (*Unit, error) {
	tsLang, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Unit{
		path:   path,
		lang:   lang,
		source: src,
		tree:   tree,
	}, nil
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".jsx":
		return LangTSX // TSX grammar handles JSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	default:
		return LangUnknown
	}
}

// Unit is one parsed source file. All analyzer queries run against it.
type Unit struct {
	path   string
	lang   Language
	source []byte
	tree   *sitter.Tree
}

// Path returns the file path this unit was loaded from.
func (u *Unit) Path() string { return u.path }

// Language returns the detected language.
func (u *Unit) Language() Language { return u.lang }

// Source returns the raw source bytes.
func (u *Unit) Source() []byte { return u.source }

// Root returns the root AST node.
func (u *Unit) Root() *sitter.Node { return u.tree.RootNode() }

// Text extracts the source text for a node. Returns empty string if the
// node is nil or its byte offsets are out of bounds.
func (u *Unit) Text(node *sitter.Node) string {
	return NodeText(node, u.source)
}

// DescendantsOfKind returns every descendant node whose type is in kinds.
func (u *Unit) DescendantsOfKind(kinds ...string) []*sitter.Node {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}

	var results []*sitter.Node
	WalkTyped(u.Root(), u.source, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if set[nodeType] {
			results = append(results, node)
		}
		return true
	})
	return results
}

// Comment is a source comment with its line span. Line and EndLine are
// equal except for multi-line block comments.
type Comment struct {
	Text    string
	Line    uint32
	EndLine uint32
}

// Comments returns all comments in source order.
func (u *Unit) Comments() []Comment {
	var comments []Comment
	for _, node := range u.DescendantsOfKind("comment") {
		comments = append(comments, Comment{
			Text:    u.Text(node),
			Line:    StartLine(node),
			EndLine: EndLine(node),
		})
	}
	return comments
}

// FirstDeclarationLine returns the starting line of the first non-comment
// top-level statement, or 0 if the file has none. File-level suppression
// directives must appear before this line.
func (u *Unit) FirstDeclarationLine() uint32 {
	root := u.Root()
	for i := range int(root.ChildCount()) {
		child := root.Child(i)
		if child.Type() == "comment" {
			continue
		}
		return StartLine(child)
	}
	return 0
}

// StartLine returns a node's 1-based starting line, degrading to 1 when the
// node is nil so a malformed node never aborts a file.
func StartLine(node *sitter.Node) uint32 {
	if node == nil {
		return 1
	}
	return node.StartPoint().Row + 1
}

// EndLine returns a node's 1-based ending line with the same degradation.
func EndLine(node *sitter.Node) uint32 {
	if node == nil {
		return 1
	}
	return node.EndPoint().Row + 1
}

// NodeText extracts the source text for a node.
func NodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(src)) {
		return ""
	}
	return string(src[start:end])
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, src []byte) bool

// TypedNodeVisitor visits AST nodes with the node type pre-fetched to avoid
// repeated CGO calls.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, src []byte) bool

// Walk traverses the AST depth-first, calling visitor for each node.
// Returning false from the visitor prunes that subtree.
func Walk(node *sitter.Node, src []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, src) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), src, visitor)
	}
}

// WalkTyped traverses the AST with cached node types.
func WalkTyped(node *sitter.Node, src []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}
	nodeType := node.Type()
	if !visitor(node, nodeType, src) {
		return
	}
	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), src, visitor)
	}
}
