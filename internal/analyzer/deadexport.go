package analyzer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/augurdev/augur/pkg/models"
)

// UsedFunc is the injected workspace predicate: does any other file
// reference this symbol name. The classifier never computes cross-file
// reachability itself; the driver binds this to the merged usage index.
type UsedFunc func(name string) bool

// DeadExportClassifier flags exported symbols no other file references.
type DeadExportClassifier struct {
	respectUnderscore bool
}

// NewDeadExportClassifier creates a classifier. When respectUnderscore is
// set, underscore-prefixed exports are treated as deliberately internal and
// never reported.
func NewDeadExportClassifier(respectUnderscore bool) *DeadExportClassifier {
	return &DeadExportClassifier{respectUnderscore: respectUnderscore}
}

// rootModules are basenames (sans extension) treated as a deliberate public
// surface when they sit at the workspace root or directly under src/.
var rootModules = map[string]bool{
	"main":  true,
	"lib":   true,
	"types": true,
}

// IsEntryPoint reports whether the relative path matches the recognized
// entry-point pattern set. Matching is case-sensitive: Index.ts is not an
// entry point. Entry-point files are never scanned, regardless of what the
// usage index says.
func IsEntryPoint(relPath string) bool {
	base := filepath.Base(relPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	// Any index module in any subdirectory.
	if stem == "index" {
		return true
	}

	if rootModules[stem] {
		dir := filepath.ToSlash(filepath.Dir(relPath))
		if dir == "." || dir == "src" {
			return true
		}
	}

	return false
}

// Classify runs the per-file state machine: skip the file entirely when
// ignored or an entry point, otherwise evaluate each export against the
// usage predicate and emit an issue per dead declaration. Suppression is
// checked after issue construction, keyed on the issue's start line and
// type.
func (c *DeadExportClassifier) Classify(facts FileFacts, directive Directive, used UsedFunc) []models.CodeIssue {
	if directive.FileIgnored {
		return nil
	}
	if IsEntryPoint(facts.Path) {
		return nil
	}

	var issues []models.CodeIssue
	for _, sym := range facts.Exports {
		if used(sym.Name) {
			continue
		}
		if c.respectUnderscore && strings.HasPrefix(sym.Name, "_") {
			continue
		}

		// Every declaration backing the name is reported: overloads and
		// merged declarations are all dead if the name is.
		for _, decl := range sym.Declarations {
			issue, ok := c.buildIssue(facts.Path, sym, decl)
			if !ok {
				continue
			}
			if directive.Suppresses(issue.Type, issue.StartLine()) {
				continue
			}
			issues = append(issues, issue)
		}
	}

	return issues
}

func (c *DeadExportClassifier) buildIssue(path string, sym models.ExportedSymbol, decl models.Declaration) (models.CodeIssue, bool) {
	location := models.NewSourceLocation(path, decl.StartLine, decl.EndLine)
	issue, err := models.NewIssue(
		models.IssueDeadExport,
		models.CertaintyMedium, // name-based evidence only; exports may be an intentional public surface
		fmt.Sprintf("exported %s %q is not referenced anywhere in the workspace", describeKind(decl.Kind), sym.Name),
		[]models.SourceLocation{location},
	)
	if err != nil {
		return models.CodeIssue{}, false
	}
	issue = issue.WithSymbol(sym.Name)
	issue.SafeFixAvailable = false
	issue.Explanation = "No import, re-export, or dynamic reference to this symbol was found outside its declaring file."
	issue.SuggestedFix = fmt.Sprintf("Remove the export or the %s %q if it is no longer part of the public surface.", describeKind(decl.Kind), sym.Name)
	issue.Tags = []string{models.TagExport, models.TagRequiresReview}
	return issue, true
}

// describeKind renders a symbol kind for humans. The kind set is closed;
// the default arm only fires for KindSymbol.
func describeKind(kind models.SymbolKind) string {
	switch kind {
	case models.KindFunction:
		return "function"
	case models.KindClass:
		return "class"
	case models.KindInterface:
		return "interface"
	case models.KindType:
		return "type"
	case models.KindVariable:
		return "variable"
	default:
		return "symbol"
	}
}
