package analyzer

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/augurdev/augur/pkg/models"
	"github.com/augurdev/augur/pkg/source"
)

// FileFacts are the per-file inputs to workspace-level classification: the
// file's own exported symbols and the names it references in other files.
// Extraction is file-local; no cross-file state is consulted here.
type FileFacts struct {
	Path            string                  `json:"path"`
	Exports         []models.ExportedSymbol `json:"exports"`
	ReferencedNames []string                `json:"referenced_names"`
}

// ExtractFileFacts reads a unit's exported-declarations table and its
// externally referenced names.
func ExtractFileFacts(unit *source.Unit) FileFacts {
	facts := FileFacts{
		Path:            unit.Path(),
		ReferencedNames: unit.ReferencedNames(),
	}

	decls := unit.ExportedDeclarations()
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		backing := decls[name]
		sym := models.ExportedSymbol{
			Name:         name,
			Kind:         backing[0].Kind,
			Declarations: backing,
		}
		facts.Exports = append(facts.Exports, sym)
	}

	return facts
}

// UsageIndex is the workspace-wide map from symbol name to "referenced
// outside its declaring file". It is built once per run after every file's
// facts are collected, then frozen: classification reads it concurrently
// without locks.
//
// Names are interned to dense uint32 ids and the referenced set lives in a
// Roaring bitmap, keeping the index small on workspaces with hundreds of
// thousands of symbols.
type UsageIndex struct {
	ids        map[string]uint32
	referenced *roaring.Bitmap
	frozen     bool
}

// NewUsageIndex creates an empty, unfrozen index.
func NewUsageIndex() *UsageIndex {
	return &UsageIndex{
		ids:        make(map[string]uint32),
		referenced: roaring.New(),
	}
}

// BuildUsageIndex merges all files' referenced names into a frozen index.
// Facts from cancelled or failed files are simply absent, which downgrades
// their references to "unseen" for this run.
func BuildUsageIndex(facts []FileFacts) *UsageIndex {
	idx := NewUsageIndex()
	for _, f := range facts {
		for _, name := range f.ReferencedNames {
			idx.addReference(name)
		}
	}
	idx.Freeze()
	return idx
}

func (idx *UsageIndex) intern(name string) uint32 {
	if id, ok := idx.ids[name]; ok {
		return id
	}
	id := uint32(len(idx.ids))
	idx.ids[name] = id
	return id
}

func (idx *UsageIndex) addReference(name string) {
	if idx.frozen {
		panic("usage index mutated after freeze")
	}
	idx.referenced.Add(idx.intern(name))
}

// Freeze marks the index read-only. Further addReference calls panic, which
// enforces the single-writer-then-freeze discipline the classification
// phase relies on.
func (idx *UsageIndex) Freeze() {
	idx.frozen = true
}

// Used reports whether the symbol name is referenced anywhere outside its
// declaring file. This is the predicate injected into the dead-export
// classifier.
func (idx *UsageIndex) Used(name string) bool {
	id, ok := idx.ids[name]
	if !ok {
		return false
	}
	return idx.referenced.Contains(id)
}

// Cardinality returns the number of distinct referenced names.
func (idx *UsageIndex) Cardinality() uint64 {
	return idx.referenced.GetCardinality()
}
