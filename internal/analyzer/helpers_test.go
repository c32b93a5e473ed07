package analyzer

import (
	"testing"

	"github.com/augurdev/augur/pkg/source"
)

// parseUnit parses TypeScript source for tests.
func parseUnit(t *testing.T, code string) *source.Unit {
	t.Helper()

	psr := source.New()
	t.Cleanup(psr.Close)

	unit, err := psr.Parse([]byte(code), source.LangTypeScript, "test.ts")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return unit
}

// parseUnitAt parses TypeScript source with an explicit path.
func parseUnitAt(t *testing.T, path, code string) *source.Unit {
	t.Helper()

	psr := source.New()
	t.Cleanup(psr.Close)

	unit, err := psr.Parse([]byte(code), source.DetectLanguage(path), path)
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}
	return unit
}
