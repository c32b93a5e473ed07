package models

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// IssueType identifies the analyzer that produced an issue.
type IssueType string

const (
	IssueDeadExport IssueType = "dead-export"
	IssueComplexity IssueType = "complexity"

	// Produced by the surrounding tool, carried here so reports and
	// suppression directives share one type vocabulary.
	IssueUnusedImport IssueType = "unused-import"
	IssueCircularDep  IssueType = "circular-dependency"
)

// Certainty expresses how much workspace-wide evidence backs an issue.
type Certainty string

const (
	CertaintyHigh   Certainty = "high"
	CertaintyMedium Certainty = "medium"
	CertaintyLow    Certainty = "low"
)

// Issue tags used by reporting layers to group and filter findings.
const (
	TagExport         = "export"
	TagComplexity     = "complexity"
	TagRequiresReview = "requires-review"
)

// SourceLocation is a line span within a file. The tree-sitter provider does
// not surface meaningful column offsets for declarations, so columns are
// fixed at 1 on both ends.
type SourceLocation struct {
	File      string `json:"file"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
	StartCol  uint32 `json:"start_col"`
	EndCol    uint32 `json:"end_col"`
}

// NewSourceLocation builds a location spanning the given lines at column 1.
func NewSourceLocation(file string, startLine, endLine uint32) SourceLocation {
	if startLine == 0 {
		startLine = 1
	}
	if endLine < startLine {
		endLine = startLine
	}
	return SourceLocation{
		File:      file,
		StartLine: startLine,
		EndLine:   endLine,
		StartCol:  1,
		EndCol:    1,
	}
}

// CodeIssue is a single analyzer finding. Issues are immutable once
// constructed; build them with NewIssue so the id stays consistent with the
// identifying fields.
type CodeIssue struct {
	ID               string           `json:"id"`
	Type             IssueType        `json:"type"`
	Certainty        Certainty        `json:"certainty"`
	Reason           string           `json:"reason"`
	Locations        []SourceLocation `json:"locations"`
	SafeFixAvailable bool             `json:"safe_fix_available"`
	SymbolName       string           `json:"symbol_name,omitempty"`
	Explanation      string           `json:"explanation,omitempty"`
	SuggestedFix     string           `json:"suggested_fix,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
}

// NewIssue constructs an issue with a deterministic id derived from the
// issue type, file, symbol name, and start line. Requires at least one
// location.
func NewIssue(issueType IssueType, certainty Certainty, reason string, locations []SourceLocation) (CodeIssue, error) {
	if len(locations) == 0 {
		return CodeIssue{}, fmt.Errorf("issue %q requires at least one location", issueType)
	}
	issue := CodeIssue{
		Type:      issueType,
		Certainty: certainty,
		Reason:    reason,
		Locations: locations,
	}
	issue.ID = IssueID(issueType, locations[0].File, issue.SymbolName, locations[0].StartLine)
	return issue, nil
}

// WithSymbol returns a copy carrying the symbol name, with the id recomputed
// to include it.
func (i CodeIssue) WithSymbol(name string) CodeIssue {
	i.SymbolName = name
	i.ID = IssueID(i.Type, i.Locations[0].File, name, i.Locations[0].StartLine)
	return i
}

// StartLine returns the reported line of the primary location. Suppression
// directives key on this value.
func (i CodeIssue) StartLine() uint32 {
	return i.Locations[0].StartLine
}

// File returns the file of the primary location.
func (i CodeIssue) File() string {
	return i.Locations[0].File
}

// IssueID derives a stable identifier from the identifying fields of an
// issue. The same input always hashes to the same id, so callers can diff
// issue sets between analysis runs.
func IssueID(issueType IssueType, file, symbol string, startLine uint32) string {
	h := xxhash.New()
	h.WriteString(string(issueType))
	h.WriteString("|")
	h.WriteString(file)
	h.WriteString("|")
	h.WriteString(symbol)
	h.WriteString("|")
	h.WriteString(strconv.FormatUint(uint64(startLine), 10))
	return strconv.FormatUint(h.Sum64(), 16)
}

// SymbolKind classifies an exported declaration. The kind set is closed:
// analyzers switch over it exhaustively rather than inspecting AST node
// types at classification time.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindVariable  SymbolKind = "variable"
	KindSymbol    SymbolKind = "symbol"
)

// ExportedSymbol is one exported name together with every declaration that
// backs it. Overloads and merged declarations share a name, so Declarations
// can hold more than one entry.
type ExportedSymbol struct {
	Name         string        `json:"name"`
	Kind         SymbolKind    `json:"kind"`
	Declarations []Declaration `json:"declarations"`
}

// Declaration is one declaration site of an exported symbol.
type Declaration struct {
	Kind      SymbolKind `json:"kind"`
	StartLine uint32     `json:"start_line"`
	EndLine   uint32     `json:"end_line"`
}

// FileIssues is the ordered issue set for one file.
type FileIssues struct {
	Path   string      `json:"path"`
	Issues []CodeIssue `json:"issues"`
}

// AnalysisResult is the workspace-level output consumed by reporting layers.
type AnalysisResult struct {
	Files   []FileIssues    `json:"files"`
	Summary AnalysisSummary `json:"summary"`
}

// AnalysisSummary provides aggregate counts for a run.
type AnalysisSummary struct {
	TotalFiles      int            `json:"total_files"`
	TotalIssues     int            `json:"total_issues"`
	IssuesByType    map[string]int `json:"issues_by_type"`
	FilesFromCache  int            `json:"files_from_cache"`
	FilesWithErrors int            `json:"files_with_errors"`
	SkippedAsEntry  int            `json:"skipped_as_entry"`
}

// NewAnalysisSummary creates an initialized summary.
func NewAnalysisSummary() AnalysisSummary {
	return AnalysisSummary{IssuesByType: make(map[string]int)}
}

// Add records a file's issues in the summary.
func (s *AnalysisSummary) Add(fi FileIssues) {
	s.TotalFiles++
	s.TotalIssues += len(fi.Issues)
	for _, issue := range fi.Issues {
		s.IssuesByType[string(issue.Type)]++
	}
}
