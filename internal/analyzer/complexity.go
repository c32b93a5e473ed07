package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"gonum.org/v1/gonum/stat"

	"github.com/augurdev/augur/pkg/config"
	"github.com/augurdev/augur/pkg/models"
	"github.com/augurdev/augur/pkg/source"
)

// decisionTypes are the node types that add a cyclomatic decision point.
// Logical && and || are counted separately from binary expressions.
var decisionTypes = map[string]bool{
	"if_statement":       true,
	"ternary_expression": true,
	"switch_case":        true,
	"for_statement":      true,
	"for_in_statement":   true, // covers for-in and for-of
	"while_statement":    true,
	"do_statement":       true,
	"catch_clause":       true,
}

// cognitiveTypes add 1 + nesting level to the cognitive score.
var cognitiveTypes = map[string]bool{
	"if_statement":       true,
	"ternary_expression": true,
	"switch_statement":   true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"catch_clause":       true,
}

// nestingTypes is the subset of cognitiveTypes that also deepens the
// nesting level while their children are traversed. Ternary expressions
// are deliberately absent: they score but do not nest. Tests pin this
// asymmetry; do not "fix" it to match the published metric.
var nestingTypes = map[string]bool{
	"if_statement":     true,
	"switch_statement": true,
	"for_statement":    true,
	"for_in_statement": true,
	"while_statement":  true,
	"do_statement":     true,
	"catch_clause":     true,
}

// ComplexityCalculator computes structural complexity metrics per function
// and aggregates them to file level.
type ComplexityCalculator struct {
	thresholds config.ComplexityThresholds
}

// NewComplexityCalculator creates a calculator with the given thresholds.
func NewComplexityCalculator(thresholds config.ComplexityThresholds) *ComplexityCalculator {
	return &ComplexityCalculator{thresholds: thresholds}
}

// AnalyzeUnit computes metrics for every function-like unit in the file,
// aggregates them, and emits one issue per function that exceeds any
// configured threshold.
func (c *ComplexityCalculator) AnalyzeUnit(unit *source.Unit) (models.FileMetrics, []models.CodeIssue) {
	fm := models.FileMetrics{Path: unit.Path()}
	var issues []models.CodeIssue

	functions := unit.Functions()
	cyclomatics := make([]float64, 0, len(functions))
	cognitives := make([]float64, 0, len(functions))

	for _, fn := range functions {
		result := AnalyzeFunction(unit, fn)
		fm.Functions = append(fm.Functions, models.FunctionMetrics{
			Name:      fn.Name,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Metrics:   result,
		})

		cyclomatics = append(cyclomatics, float64(result.Cyclomatic))
		cognitives = append(cognitives, float64(result.Cognitive))
		if result.MaxNesting > fm.MaxNesting {
			fm.MaxNesting = result.MaxNesting
		}
		if result.Parameters > fm.MaxParameters {
			fm.MaxParameters = result.Parameters
		}
		fm.TotalLines += result.LinesOfCode

		if issue, violated := c.thresholdIssue(unit.Path(), fn, result); violated {
			issues = append(issues, issue)
		}
	}

	if len(functions) > 0 {
		fm.AvgCyclomatic = stat.Mean(cyclomatics, nil)
		fm.AvgCognitive = stat.Mean(cognitives, nil)
	}
	fm.MaintainabilityIndex = models.MaintainabilityIndex(fm.TotalLines, fm.AvgCyclomatic)

	return fm, issues
}

// AnalyzeFunction computes the metrics for a single function unit. A
// body-less function still has cyclomatic complexity 1 and spans at least
// one line.
func AnalyzeFunction(unit *source.Unit, fn source.FunctionUnit) models.ComplexityResult {
	result := models.ComplexityResult{
		Cyclomatic:  1,
		Parameters:  fn.Parameters,
		LinesOfCode: int(fn.EndLine-fn.StartLine) + 1,
	}
	if result.LinesOfCode < 1 {
		result.LinesOfCode = 1
	}
	if fn.Body == nil {
		return result
	}

	result.Cyclomatic += countDecisionPoints(fn.Body, unit.Source())
	result.Cognitive, result.MaxNesting = cognitiveAndNesting(fn.Body, 0)
	return result
}

// countDecisionPoints counts branching constructs and short-circuit logical
// operators anywhere in the body (descendant search, not direct children).
func countDecisionPoints(body *sitter.Node, src []byte) uint32 {
	var count uint32
	source.WalkTyped(body, src, func(node *sitter.Node, nodeType string, s []byte) bool {
		if decisionTypes[nodeType] {
			count++
		}
		if nodeType == "binary_expression" {
			op := source.NodeText(node.ChildByFieldName("operator"), s)
			if op == "&&" || op == "||" {
				count++
			}
		}
		return true
	})
	return count
}

// cognitiveAndNesting runs the depth-first traversal that scores cognitive
// complexity and tracks the maximum nesting depth in one pass. Each
// control-flow node adds 1 + the current nesting level; nesting-incrementing
// kinds raise the level for the duration of their children. The node itself
// is scored, not just its descendants: an expression-bodied arrow function
// can hand us a bare ternary as the body root.
func cognitiveAndNesting(node *sitter.Node, depth int) (uint32, int) {
	var score uint32
	childDepth := depth

	nodeType := node.Type()
	if cognitiveTypes[nodeType] {
		score = uint32(1 + depth)
	}
	if nestingTypes[nodeType] {
		childDepth = depth + 1
	}
	maxDepth := childDepth

	for i := range int(node.ChildCount()) {
		childScore, childMax := cognitiveAndNesting(node.Child(i), childDepth)
		score += childScore
		if childMax > maxDepth {
			maxDepth = childMax
		}
	}

	return score, maxDepth
}

// thresholdIssue builds a complexity issue when any metric exceeds its
// threshold, naming every violated metric with its value and limit.
func (c *ComplexityCalculator) thresholdIssue(path string, fn source.FunctionUnit, result models.ComplexityResult) (models.CodeIssue, bool) {
	var violations []string

	if c.thresholds.CyclomaticComplexity > 0 && result.Cyclomatic > uint32(c.thresholds.CyclomaticComplexity) {
		violations = append(violations, fmt.Sprintf("cyclomatic complexity %d exceeds threshold %d",
			result.Cyclomatic, c.thresholds.CyclomaticComplexity))
	}
	if c.thresholds.CognitiveComplexity > 0 && result.Cognitive > uint32(c.thresholds.CognitiveComplexity) {
		violations = append(violations, fmt.Sprintf("cognitive complexity %d exceeds threshold %d",
			result.Cognitive, c.thresholds.CognitiveComplexity))
	}
	if c.thresholds.MaxNestingDepth > 0 && result.MaxNesting > c.thresholds.MaxNestingDepth {
		violations = append(violations, fmt.Sprintf("nesting depth %d exceeds threshold %d",
			result.MaxNesting, c.thresholds.MaxNestingDepth))
	}

	if len(violations) == 0 {
		return models.CodeIssue{}, false
	}

	location := models.NewSourceLocation(path, fn.StartLine, fn.EndLine)
	issue, err := models.NewIssue(
		models.IssueComplexity,
		models.CertaintyMedium, // heuristic thresholds, not a correctness guarantee
		fmt.Sprintf("function %s: %s", fn.Name, strings.Join(violations, "; ")),
		[]models.SourceLocation{location},
	)
	if err != nil {
		return models.CodeIssue{}, false
	}
	issue = issue.WithSymbol(fn.Name)
	issue.Explanation = "High complexity makes the function hard to test and reason about."
	issue.SuggestedFix = "Extract nested branches into smaller named functions."
	issue.Tags = []string{models.TagComplexity}
	return issue, true
}
