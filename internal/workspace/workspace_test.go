package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augurdev/augur/internal/cache"
	"github.com/augurdev/augur/pkg/config"
	"github.com/augurdev/augur/pkg/models"
)

func writeSource(t *testing.T, root, rel, code string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	return cfg
}

func issuesFor(report *Report, path string) []models.CodeIssue {
	for _, fi := range report.Result.Files {
		if fi.Path == path {
			return fi.Issues
		}
	}
	return nil
}

func TestAnalyzeDir_DeadExport(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/util.ts", `export function helper(): number {
  return 1;
}
export function deadExport(): number {
  return 2;
}
`)
	writeSource(t, root, "src/feature.ts", `import { helper } from "./util";

export function run(): number {
  return helper();
}
`)
	writeSource(t, root, "src/index.ts", `export { run } from "./feature";
`)

	wa := New(WithConfig(testConfig()))
	report, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)

	utilIssues := issuesFor(report, "src/util.ts")
	require.Len(t, utilIssues, 1)
	issue := utilIssues[0]
	assert.Equal(t, models.IssueDeadExport, issue.Type)
	assert.Equal(t, models.CertaintyMedium, issue.Certainty)
	assert.False(t, issue.SafeFixAvailable)
	assert.Equal(t, "deadExport", issue.SymbolName)

	// run is re-exported by the index module, so it is referenced; the
	// index module itself is an entry point and never reported.
	assert.Empty(t, issuesFor(report, "src/feature.ts"))
	assert.Empty(t, issuesFor(report, "src/index.ts"))
	assert.Equal(t, 1, report.Result.Summary.SkippedAsEntry)
}

func TestAnalyzeDir_SecondRunHitsCache(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/a.ts", `export const orphan = 1;
`)

	wa := New(WithConfig(testConfig()))

	first, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Result.Summary.FilesFromCache)

	second, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Result.Summary.FilesFromCache)

	// Same issues either way.
	assert.Equal(t, first.Result.Summary.TotalIssues, second.Result.Summary.TotalIssues)
	assert.Greater(t, second.CacheStats.Hits, uint64(0))
}

func TestAnalyzeDir_EditInvalidatesCachedResult(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/a.ts", `export const orphan = 1;
`)

	wa := New(WithConfig(testConfig()))
	first, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Result.Summary.TotalIssues)

	// Rewrite the file so the orphan is gone; the stale cache entry must
	// not resurrect the issue.
	writeSource(t, root, "src/a.ts", `const _private = 1;
`)
	second, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Result.Summary.FilesFromCache)
	assert.Equal(t, 0, second.Result.Summary.TotalIssues)
}

func TestAnalyzeDir_SuppressionDirectives(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/tolerated.ts", `// augur:disable-next-line dead-export
export const quiet = 1;
export const loud = 2;
`)
	writeSource(t, root, "src/optout.ts", `// augur:disable-file
export const invisible = 1;
`)

	wa := New(WithConfig(testConfig()))
	report, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)

	tolerated := issuesFor(report, "src/tolerated.ts")
	require.Len(t, tolerated, 1)
	assert.Equal(t, "loud", tolerated[0].SymbolName)

	assert.Empty(t, issuesFor(report, "src/optout.ts"))
}

func TestAnalyzeDir_ComplexityGate(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/busy.ts", `export function busy(x: number): number {
  if (x > 0) {
    return 1;
  }
  if (x < 0) {
    return -1;
  }
  return 0;
}
`)
	writeSource(t, root, "src/index.ts", `export { busy } from "./busy";
`)

	cfg := testConfig()
	cfg.Analyzer.EnableDeadExports = false
	cfg.Analyzer.ComplexityThresholds.CyclomaticComplexity = 2

	wa := New(WithConfig(cfg))
	report, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)

	busyIssues := issuesFor(report, "src/busy.ts")
	require.Len(t, busyIssues, 1)
	assert.Equal(t, models.IssueComplexity, busyIssues[0].Type)

	// Metrics are collected for every analyzed file.
	assert.Len(t, report.Metrics, 2)
}

func TestAnalyzeDir_DisabledAnalyzersProduceNothing(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/a.ts", `export const orphan = 1;
`)

	cfg := testConfig()
	cfg.Analyzer.EnableDeadExports = false
	cfg.Analyzer.EnableComplexityAnalysis = false

	wa := New(WithConfig(cfg))
	report, err := wa.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Result.Summary.TotalIssues)
	assert.Empty(t, report.Metrics)
}

func TestAnalyzeFiles_UnreadableFileIsIsolated(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/good.ts", `export const orphan = 1;
`)

	wa := New(WithConfig(testConfig()))
	report, err := wa.AnalyzeFiles(context.Background(), root,
		[]string{"src/good.ts", "src/missing.ts"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Result.Summary.FilesWithErrors)
	require.Len(t, issuesFor(report, "src/good.ts"), 1)
}

func TestAnalyzeFiles_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/a.ts", "export const x = 1;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wa := New(WithConfig(testConfig()))
	_, err := wa.AnalyzeFiles(ctx, root, []string{"src/a.ts"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWarmCache(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/a.ts", `export const orphan = 1;
`)

	shared := cache.New[FileAnalysis](time.Hour, 0, nil)
	wa := New(WithConfig(testConfig()), WithCache(shared))

	require.NoError(t, wa.WarmCache(context.Background(), root, []string{"src/a.ts"}, 0))

	report, err := wa.AnalyzeFiles(context.Background(), root, []string{"src/a.ts"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Result.Summary.FilesFromCache)
}
