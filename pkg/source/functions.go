package source

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// AnonymousName is reported for function-like units whose name cannot be
// recovered from the surrounding declaration.
const AnonymousName = "<anonymous>"

// functionNodeTypes are the AST node types treated as function-like units:
// declarations, methods, arrow functions, and function expressions.
var functionNodeTypes = []string{
	"function_declaration",
	"generator_function_declaration",
	"method_definition",
	"arrow_function",
	"function",
	"function_expression",
}

// FunctionUnit is one function-like unit extracted from a source file.
type FunctionUnit struct {
	Name       string
	StartLine  uint32
	EndLine    uint32
	Parameters int
	Body       *sitter.Node
}

// Functions extracts every function-like unit in the file. Display names
// are best-effort: anonymous arrow functions and function expressions take
// the name of the variable or property they are assigned to.
func (u *Unit) Functions() []FunctionUnit {
	var functions []FunctionUnit
	for _, node := range u.DescendantsOfKind(functionNodeTypes...) {
		fn := FunctionUnit{
			Name:       u.functionName(node),
			StartLine:  StartLine(node),
			EndLine:    EndLine(node),
			Parameters: countParameters(node),
			Body:       functionBody(node),
		}
		functions = append(functions, fn)
	}
	return functions
}

// functionName recovers the display name for a function-like node.
func (u *Unit) functionName(node *sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return u.Text(nameNode)
	}

	// Anonymous forms: look at the enclosing declarator or property.
	parent := node.Parent()
	if parent != nil {
		switch parent.Type() {
		case "variable_declarator":
			if name := u.Text(parent.ChildByFieldName("name")); name != "" {
				return name
			}
		case "pair":
			if key := u.Text(parent.ChildByFieldName("key")); key != "" {
				return key
			}
		case "assignment_expression":
			if left := u.Text(parent.ChildByFieldName("left")); left != "" {
				return left
			}
		}
	}

	return AnonymousName
}

// countParameters counts declared parameters, tolerating arrow functions
// with a single bare identifier parameter.
func countParameters(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		// Arrow shorthand: x => x * 2
		if p := node.ChildByFieldName("parameter"); p != nil {
			return 1
		}
		return 0
	}

	count := 0
	for i := range int(params.ChildCount()) {
		switch params.Child(i).Type() {
		case "required_parameter", "optional_parameter", "rest_parameter",
			"identifier", "object_pattern", "array_pattern", "assignment_pattern":
			count++
		}
	}
	return count
}

// functionBody returns the body node. Arrow functions with expression
// bodies return the expression itself so complexity traversal still sees
// nested ternaries and logical operators.
func functionBody(node *sitter.Node) *sitter.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	return nil
}
