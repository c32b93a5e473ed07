package models

import "math"

// ComplexityResult holds the structural metrics for a single function-like
// unit. Derived per analysis pass, never persisted.
type ComplexityResult struct {
	Cyclomatic  uint32 `json:"cyclomatic"`
	Cognitive   uint32 `json:"cognitive"`
	MaxNesting  int    `json:"max_nesting"`
	Parameters  int    `json:"parameters"`
	LinesOfCode int    `json:"lines_of_code"`
}

// FunctionMetrics pairs a function's identity with its metrics.
type FunctionMetrics struct {
	Name      string           `json:"name"`
	StartLine uint32           `json:"start_line"`
	EndLine   uint32           `json:"end_line"`
	Metrics   ComplexityResult `json:"metrics"`
}

// FileMetrics aggregates function metrics to the file level.
type FileMetrics struct {
	Path                 string            `json:"path"`
	Functions            []FunctionMetrics `json:"functions"`
	AvgCyclomatic        float64           `json:"avg_cyclomatic"`
	AvgCognitive         float64           `json:"avg_cognitive"`
	MaxNesting           int               `json:"max_nesting"`
	MaxParameters        int               `json:"max_parameters"`
	TotalLines           int               `json:"total_lines"`
	MaintainabilityIndex float64           `json:"maintainability_index"`
}

// MaintainabilityIndex computes the clamped maintainability score from total
// function LOC and mean cyclomatic complexity. Inputs are floored at 1 so
// the logarithms stay finite.
func MaintainabilityIndex(totalLOC int, avgCyclomatic float64) float64 {
	loc := float64(totalLOC)
	if loc < 1 {
		loc = 1
	}
	cc := avgCyclomatic
	if cc < 1 {
		cc = 1
	}
	mi := 171 - 5.2*math.Log(loc) - 0.23*cc - 16.2*math.Log(loc)
	if mi < 0 {
		return 0
	}
	if mi > 100 {
		return 100
	}
	return mi
}
