package output

import (
	"fmt"
	"strconv"

	"github.com/augurdev/augur/internal/cache"
	"github.com/augurdev/augur/pkg/models"
)

// IssueReport builds the renderable document for a workspace issue run.
func IssueReport(result models.AnalysisResult, colored bool) *Document {
	doc := &Document{Title: "Workspace Analysis", Data: result}

	if result.Summary.TotalIssues == 0 {
		doc.Sections = append(doc.Sections, &Section{
			Content: fmt.Sprintf("No issues found in %d files.", result.Summary.TotalFiles),
		})
		return doc
	}

	rows := make([][]string, 0, result.Summary.TotalIssues)
	for _, fi := range result.Files {
		for _, issue := range fi.Issues {
			certainty := string(issue.Certainty)
			if colored {
				certainty = CertaintyColor(certainty, certainty)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d", fi.Path, issue.StartLine()),
				string(issue.Type),
				issue.SymbolName,
				certainty,
				issue.Reason,
			})
		}
	}

	doc.Sections = append(doc.Sections,
		NewTable("Issues",
			[]string{"Location", "Type", "Symbol", "Certainty", "Reason"},
			rows, nil, result.Files),
		summarySection(result.Summary),
	)
	return doc
}

func summarySection(s models.AnalysisSummary) *Section {
	content := fmt.Sprintf("%d issues in %d files", s.TotalIssues, s.TotalFiles)
	for name, count := range s.IssuesByType {
		content += fmt.Sprintf("\n  %s: %d", name, count)
	}
	if s.FilesFromCache > 0 {
		content += fmt.Sprintf("\n  from cache: %d", s.FilesFromCache)
	}
	if s.FilesWithErrors > 0 {
		content += fmt.Sprintf("\n  files with errors: %d", s.FilesWithErrors)
	}
	return &Section{Title: "Summary", Content: content, Data: s}
}

// ComplexityReport builds the renderable document for per-file metrics.
// Only files containing at least one function are listed.
func ComplexityReport(metrics []models.FileMetrics) *Document {
	doc := &Document{Title: "Complexity Metrics", Data: metrics}

	rows := make([][]string, 0, len(metrics))
	for _, fm := range metrics {
		if len(fm.Functions) == 0 {
			continue
		}
		rows = append(rows, []string{
			fm.Path,
			strconv.Itoa(len(fm.Functions)),
			fmt.Sprintf("%.1f", fm.AvgCyclomatic),
			fmt.Sprintf("%.1f", fm.AvgCognitive),
			strconv.Itoa(fm.MaxNesting),
			fmt.Sprintf("%.1f", fm.MaintainabilityIndex),
		})
	}

	if len(rows) == 0 {
		doc.Sections = append(doc.Sections, &Section{Content: "No functions found."})
		return doc
	}

	doc.Sections = append(doc.Sections, NewTable("Files",
		[]string{"File", "Functions", "Avg Cyclomatic", "Avg Cognitive", "Max Nesting", "MI"},
		rows, nil, metrics))
	return doc
}

// CacheStatsReport renders cache effectiveness counters.
func CacheStatsReport(stats cache.Stats) *Document {
	rows := [][]string{
		{"Entries", strconv.Itoa(stats.Entries)},
		{"Hits", strconv.FormatUint(stats.Hits, 10)},
		{"Misses", strconv.FormatUint(stats.Misses, 10)},
		{"Evictions", strconv.FormatUint(stats.Evictions, 10)},
		{"Estimated bytes", strconv.FormatInt(stats.EstimatedBytes, 10)},
		{"Hit rate", fmt.Sprintf("%.1f%%", stats.HitRate*100)},
	}
	return &Document{
		Title:    "Cache Statistics",
		Sections: []Renderable{NewTable("", []string{"Metric", "Value"}, rows, nil, stats)},
		Data:     stats,
	}
}
