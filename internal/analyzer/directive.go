package analyzer

import (
	"strings"

	"github.com/augurdev/augur/pkg/models"
	"github.com/augurdev/augur/pkg/source"
)

// Suppression directive markers recognized in comments.
const (
	directiveFile     = "augur:disable-file"
	directiveLine     = "augur:disable-line"
	directiveNextLine = "augur:disable-next-line"
)

// wildcardType matches any issue type in a line rule.
const wildcardType = "*"

// LineRule suppresses issues of a given type on a specific line. An empty
// or wildcard type suppresses every issue on that line.
type LineRule struct {
	Line uint32
	Type string
}

// Directive holds a file's suppression state: whole-file opt-out plus
// ordered per-line ignore rules.
type Directive struct {
	FileIgnored bool
	LineRules   []LineRule
}

// Suppresses reports whether the directive suppresses an issue of the given
// type starting at the given line. A rule matches only when both the line
// and the type (or a wildcard) match.
func (d Directive) Suppresses(issueType models.IssueType, startLine uint32) bool {
	for _, rule := range d.LineRules {
		if rule.Line != startLine {
			continue
		}
		if rule.Type == wildcardType || rule.Type == string(issueType) {
			return true
		}
	}
	return false
}

// ParseDirectives extracts suppression directives from a unit's comments.
// Malformed directive text is ignored; suppression is advisory, never a
// reason to fail a file.
func ParseDirectives(unit *source.Unit) Directive {
	var d Directive
	firstDecl := unit.FirstDeclarationLine()

	for _, comment := range unit.Comments() {
		text := trimCommentMarkers(comment.Text)

		idx := strings.Index(text, "augur:")
		if idx < 0 {
			continue
		}
		fields := strings.Fields(text[idx:])
		if len(fields) == 0 {
			continue
		}

		issueType := wildcardType
		if len(fields) > 1 {
			issueType = fields[1]
		}

		switch fields[0] {
		case directiveFile:
			// File-level suppression only counts before the first
			// declaration; a trailing disable-file is ignored.
			if firstDecl == 0 || comment.Line <= firstDecl {
				d.FileIgnored = true
			}
		case directiveNextLine:
			// A block comment can span lines; the rule binds to the line
			// after the comment ends, not after it starts.
			d.LineRules = append(d.LineRules, LineRule{Line: comment.EndLine + 1, Type: issueType})
		case directiveLine:
			d.LineRules = append(d.LineRules, LineRule{Line: comment.Line, Type: issueType})
		}
	}

	return d
}

// trimCommentMarkers strips comment syntax so directive matching sees only
// the comment body.
func trimCommentMarkers(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}
