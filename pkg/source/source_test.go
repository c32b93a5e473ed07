package source

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path, code string) *Unit {
	t.Helper()

	psr := New()
	t.Cleanup(psr.Close)

	unit, err := psr.Parse([]byte(code), DetectLanguage(path), path)
	require.NoError(t, err)
	return unit
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"a.ts", LangTypeScript},
		{"a.mts", LangTypeScript},
		{"a.cts", LangTypeScript},
		{"a.tsx", LangTSX},
		{"a.jsx", LangTSX},
		{"a.js", LangJavaScript},
		{"a.mjs", LangJavaScript},
		{"a.cjs", LangJavaScript},
		{"a.rb", LangUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestParse_UnknownLanguage(t *testing.T) {
	psr := New()
	defer psr.Close()

	_, err := psr.Parse([]byte("x"), LangUnknown, "a.rb")
	assert.Error(t, err)
}

func TestUnit_Comments(t *testing.T) {
	unit := parse(t, "a.ts", `// first
const x = 1; // trailing
/* block
   continues */
`)

	comments := unit.Comments()
	require.Len(t, comments, 3)
	assert.Equal(t, "// first", comments[0].Text)
	assert.EqualValues(t, 1, comments[0].Line)
	assert.EqualValues(t, 1, comments[0].EndLine)
	assert.EqualValues(t, 2, comments[1].Line)
	assert.EqualValues(t, 3, comments[2].Line)
	assert.EqualValues(t, 4, comments[2].EndLine, "block comment span ends on its closing line")
}

func TestUnit_FirstDeclarationLine(t *testing.T) {
	unit := parse(t, "a.ts", `// header comment
// more header

const x = 1;
`)
	assert.EqualValues(t, 4, unit.FirstDeclarationLine())

	empty := parse(t, "b.ts", "// only a comment\n")
	assert.EqualValues(t, 0, empty.FirstDeclarationLine())
}

func TestUnit_Functions(t *testing.T) {
	unit := parse(t, "a.ts", `function named(a: number, b: string): void {}

const arrow = (x: number) => x * 2;

class Widget {
  render(props: object): string {
    return "";
  }
}

const obj = {
  handler: function () {},
};
`)

	functions := unit.Functions()
	require.Len(t, functions, 4)

	byName := make(map[string]FunctionUnit)
	for _, fn := range functions {
		byName[fn.Name] = fn
	}

	named := byName["named"]
	assert.Equal(t, 2, named.Parameters)
	assert.EqualValues(t, 1, named.StartLine)

	arrow, ok := byName["arrow"]
	require.True(t, ok, "arrow function should take the variable name")
	assert.Equal(t, 1, arrow.Parameters)

	render := byName["render"]
	assert.Equal(t, 1, render.Parameters)

	_, ok = byName["handler"]
	assert.True(t, ok, "function expression should take the property name")
}

func TestUnit_ExportedDeclarations(t *testing.T) {
	unit := parse(t, "a.ts", `export function run(): void {}
export class Widget {}
export interface Shape {
  area(): number;
}
export type ID = string;
export const one = 1, two = 2;
const hidden = 3;
export { hidden };
`)

	decls := unit.ExportedDeclarations()

	assert.Contains(t, decls, "run")
	assert.Contains(t, decls, "Widget")
	assert.Contains(t, decls, "Shape")
	assert.Contains(t, decls, "ID")
	assert.Contains(t, decls, "one")
	assert.Contains(t, decls, "two")
	assert.Contains(t, decls, "hidden")
	assert.NotContains(t, decls, "area")
}

func TestUnit_ExportedDeclarations_SkipsReExports(t *testing.T) {
	unit := parse(t, "a.ts", `export { helper } from "./util";
export const local = 1;
`)

	decls := unit.ExportedDeclarations()
	assert.NotContains(t, decls, "helper", "re-export is a reference, not a local declaration")
	assert.Contains(t, decls, "local")
}

func TestUnit_ReferencedNames(t *testing.T) {
	unit := parse(t, "a.ts", `import { alpha, beta as localBeta } from "./mod";
import * as ns from "./ns";
import defaultThing from "./thing";
export { gamma } from "./other";
`)

	referenced := make(map[string]bool)
	for _, name := range unit.ReferencedNames() {
		referenced[name] = true
	}

	assert.True(t, referenced["alpha"])
	assert.True(t, referenced["beta"], "original name, not the local alias")
	assert.True(t, referenced["ns"])
	assert.True(t, referenced["defaultThing"])
	assert.True(t, referenced["gamma"], "re-export counts as a reference")
}

func TestUnit_ReferencedNames_DynamicLoads(t *testing.T) {
	unit := parse(t, "a.ts", `const { readFile, writeFile: wf } = require("./fs");
const whole = require("./blob");

async function load() {
  const { parse } = await import("./parser");
  return parse;
}
`)

	referenced := make(map[string]bool)
	for _, name := range unit.ReferencedNames() {
		referenced[name] = true
	}

	assert.True(t, referenced["readFile"])
	assert.True(t, referenced["writeFile"], "original property name, not the local alias")
	assert.True(t, referenced["parse"])
	assert.False(t, referenced["whole"], "bare module-object binding is not a named reference")
}

func TestParser_Load(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/mod.ts"
	require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0o644))

	psr := New()
	defer psr.Close()

	unit, err := psr.Load(path)
	require.NoError(t, err)
	assert.Equal(t, LangTypeScript, unit.Language())
	assert.Contains(t, unit.ExportedDeclarations(), "x")

	_, err = psr.Load(dir + "/missing.ts")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(dir+"/odd.rb", []byte("puts 1\n"), 0o644))
	_, err = psr.Load(dir + "/odd.rb")
	assert.Error(t, err)
}

func TestStartLine_NilNode(t *testing.T) {
	assert.EqualValues(t, 1, StartLine(nil))
	assert.EqualValues(t, 1, EndLine(nil))
	assert.Equal(t, "", NodeText(nil, nil))
}
