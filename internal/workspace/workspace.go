// Package workspace drives the two-phase analysis pipeline: a parallel
// per-file fact-gathering phase, a barrier where the usage index is built
// and frozen, then workspace-level classification over the frozen index.
package workspace

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/augurdev/augur/internal/analyzer"
	"github.com/augurdev/augur/internal/cache"
	"github.com/augurdev/augur/internal/fileproc"
	"github.com/augurdev/augur/internal/scanner"
	"github.com/augurdev/augur/pkg/config"
	"github.com/augurdev/augur/pkg/models"
	"github.com/augurdev/augur/pkg/source"
)

// FileAnalysis is the cached per-file payload: everything derivable from
// the file's own content. Cross-file classification happens later and is
// never cached, because its answer depends on the rest of the workspace.
type FileAnalysis struct {
	Facts            analyzer.FileFacts `json:"facts"`
	Directive        analyzer.Directive `json:"directive"`
	Metrics          models.FileMetrics `json:"metrics"`
	ComplexityIssues []models.CodeIssue `json:"complexity_issues"`
	FromCache        bool               `json:"-"`
}

// Report is the full output of a workspace run.
type Report struct {
	Result     models.AnalysisResult `json:"result"`
	Metrics    []models.FileMetrics  `json:"metrics,omitempty"`
	CacheStats cache.Stats           `json:"cache_stats"`
	Errors     []string              `json:"errors,omitempty"`
}

// Analyzer orchestrates workspace analysis.
type Analyzer struct {
	config     *config.Config
	cache      *cache.Cache[FileAnalysis]
	onProgress func()
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		a.config = cfg
	}
}

// WithCache substitutes the result cache (for testing or shared instances).
func WithCache(c *cache.Cache[FileAnalysis]) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithProgress sets a callback invoked once per processed file.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a workspace analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{config: config.LoadOrDefault()}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil && a.config.Cache.Enabled {
		a.cache = cache.New[FileAnalysis](
			time.Duration(a.config.Cache.TTLSeconds)*time.Second,
			a.config.Cache.MaxSizeBytes,
			estimateSize,
		)
	}
	return a
}

// Cache exposes the underlying result cache. Nil when caching is disabled.
func (a *Analyzer) Cache() *cache.Cache[FileAnalysis] {
	return a.cache
}

// estimateSize charges an entry roughly for its facts and metrics. The
// estimate only needs to be proportional for eviction to behave sensibly.
func estimateSize(fa FileAnalysis) int64 {
	size := int64(256)
	for _, sym := range fa.Facts.Exports {
		size += int64(len(sym.Name)) + int64(len(sym.Declarations))*24
	}
	for _, name := range fa.Facts.ReferencedNames {
		size += int64(len(name))
	}
	size += int64(len(fa.Facts.Path))
	size += int64(len(fa.Metrics.Functions)) * 96
	size += int64(len(fa.ComplexityIssues)) * 512
	return size
}

// AnalyzeDir scans root and analyzes every discovered source file.
func (a *Analyzer) AnalyzeDir(ctx context.Context, root string) (*Report, error) {
	files, err := scanner.New(a.config).ScanDir(root)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, root, files)
}

// AnalyzeFiles runs the pipeline over root-relative file paths. Per-file
// failures (unreadable, unparseable) are recorded and skipped; only a
// cancelled context aborts the run.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, root string, files []string) (*Report, error) {
	analyses, procErrs := fileproc.MapUnitsContext(ctx, files, a.config.Workers,
		func(psr *source.Parser, relPath string) (FileAnalysis, error) {
			return a.analyzeFile(psr, root, relPath)
		}, a.onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	if procErrs != nil {
		for _, pe := range procErrs.Errors {
			report.Errors = append(report.Errors, pe.Error())
		}
	}

	// Barrier: every surviving file's facts are in; freeze the index.
	facts := make([]analyzer.FileFacts, 0, len(analyses))
	for _, fa := range analyses {
		facts = append(facts, fa.Facts)
	}
	idx := analyzer.BuildUsageIndex(facts)

	classifier := analyzer.NewDeadExportClassifier(a.config.Analyzer.RespectUnderscoreConvention)

	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].Facts.Path < analyses[j].Facts.Path
	})

	summary := models.NewAnalysisSummary()
	summary.FilesWithErrors = len(report.Errors)

	for _, fa := range analyses {
		if fa.FromCache {
			summary.FilesFromCache++
		}
		if analyzer.IsEntryPoint(fa.Facts.Path) {
			summary.SkippedAsEntry++
		}

		var issues []models.CodeIssue
		if a.config.Analyzer.EnableComplexityAnalysis && !fa.Directive.FileIgnored {
			issues = append(issues, fa.ComplexityIssues...)
		}
		if a.config.Analyzer.EnableDeadExports {
			issues = append(issues, classifier.Classify(fa.Facts, fa.Directive, idx.Used)...)
		}
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].StartLine() < issues[j].StartLine()
		})

		fi := models.FileIssues{Path: fa.Facts.Path, Issues: issues}
		summary.Add(fi)
		if len(issues) > 0 {
			report.Result.Files = append(report.Result.Files, fi)
		}

		if a.config.Analyzer.EnableComplexityAnalysis {
			report.Metrics = append(report.Metrics, fa.Metrics)
		}
	}

	report.Result.Summary = summary
	if a.cache != nil {
		report.CacheStats = a.cache.GetStats()
	}
	return report, nil
}

// analyzeFile produces the cacheable per-file analysis. The content hash is
// computed from the bytes actually analyzed, so an edit between hashing and
// parsing can only cause a spurious miss, never a stale hit.
func (a *Analyzer) analyzeFile(psr *source.Parser, root, relPath string) (FileAnalysis, error) {
	absPath := filepath.Join(root, filepath.FromSlash(relPath))
	data, hash, err := cache.ReadAndHash(absPath)
	if err != nil {
		return FileAnalysis{}, err
	}

	key := cache.Key(relPath)
	if a.cache != nil {
		if fa, ok := a.cache.Get(key, hash); ok {
			fa.FromCache = true
			return fa, nil
		}
	}

	fa, err := a.computeFile(psr, relPath, data)
	if err != nil {
		return FileAnalysis{}, err
	}

	if a.cache != nil {
		a.cache.Set(key, fa, hash)
	}
	return fa, nil
}

// computeFile runs the per-file analyzers over raw source bytes.
func (a *Analyzer) computeFile(psr *source.Parser, relPath string, data []byte) (FileAnalysis, error) {
	unit, err := psr.Parse(data, source.DetectLanguage(relPath), relPath)
	if err != nil {
		return FileAnalysis{}, err
	}

	fa := FileAnalysis{
		Facts:     analyzer.ExtractFileFacts(unit),
		Directive: analyzer.ParseDirectives(unit),
	}

	if a.config.Analyzer.EnableComplexityAnalysis {
		calc := analyzer.NewComplexityCalculator(a.config.Analyzer.ComplexityThresholds)
		metrics, issues := calc.AnalyzeUnit(unit)
		fa.Metrics = metrics
		for _, issue := range issues {
			if fa.Directive.Suppresses(issue.Type, issue.StartLine()) {
				continue
			}
			fa.ComplexityIssues = append(fa.ComplexityIssues, issue)
		}
	}

	return fa, nil
}

// WarmCache refreshes cached analyses for the given root-relative files plus
// the most-hit keys already in the cache. A no-op when caching is disabled.
func (a *Analyzer) WarmCache(ctx context.Context, root string, files []string, topHits int) error {
	if a.cache == nil {
		return nil
	}

	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = cache.Key(f)
	}

	psr := source.New()
	defer psr.Close()

	return a.cache.Warm(ctx, keys, cache.WarmOptions{TopHits: topHits},
		func(ctx context.Context, key string) (FileAnalysis, string, error) {
			relPath := cache.PathFromKey(key)
			data, hash, err := cache.ReadAndHash(filepath.Join(root, filepath.FromSlash(relPath)))
			if err != nil {
				return FileAnalysis{}, "", err
			}
			fa, err := a.computeFile(psr, relPath, data)
			if err != nil {
				return FileAnalysis{}, "", err
			}
			return fa, hash, nil
		})
}
