package references

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"symbols-view/src/config"
	"symbols-view/src/documents"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func scannerConfig() config.ScannerConfig {
	return config.ScannerConfig{
		Include:     []string{"*.go"},
		ExcludeDirs: []string{".git", "vendor"},
		Workers:     4,
	}
}

func TestScanInputResolveFindsWholeWords(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "func run() {\n\trun()\n\trunner()\n}\n")
	writeFile(t, dir, "other.go", "// run is called from main\nvar _ = run\n")
	writeFile(t, dir, "skip.txt", "run run run\n")
	writeFile(t, dir, filepath.Join("vendor", "dep.go"), "run()\n")

	store := documents.NewStore()
	// Position on "run" in the declaration.
	pos := protocol.Position{Line: 0, Character: 5}
	loc := protocol.Location{URI: documents.FilePathToURI(main), Range: protocol.Range{Start: pos, End: pos}}

	input := NewScanInput(store, dir, scannerConfig(), loc)
	model, err := input.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.False(t, model.Empty)
	assert.Equal(t, `4 results in 2 files for "run"`, model.Message)

	refs := model.Provider.(*ReferencesModel)
	children, err := refs.GetChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, children, 2)

	// Files are sorted by URI; main.go has the declaration and the call,
	// but not "runner".
	var mainEntry *FileEntry
	for _, c := range children {
		if f := c.(*FileEntry); filepath.Base(documents.URIToFilePath(f.URI)) == "main.go" {
			mainEntry = f
		}
	}
	require.NotNil(t, mainEntry)
	require.Len(t, mainEntry.Refs, 2)
	assert.Equal(t, uint32(0), mainEntry.Refs[0].Range.Start.Line)
	assert.Equal(t, uint32(1), mainEntry.Refs[1].Range.Start.Line)
}

func TestScanInputResolveNoWordIsEmpty(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "x  y\n")

	store := documents.NewStore()
	pos := protocol.Position{Line: 0, Character: 2}
	loc := protocol.Location{URI: documents.FilePathToURI(main), Range: protocol.Range{Start: pos, End: pos}}

	model, err := NewScanInput(store, dir, scannerConfig(), loc).Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, model.Empty)
}

func TestScanInputResolveNoMatchesElsewhereIsNotEmpty(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "unique\n")

	store := documents.NewStore()
	pos := protocol.Position{Line: 0, Character: 0}
	loc := protocol.Location{URI: documents.FilePathToURI(main), Range: protocol.Range{Start: pos, End: pos}}

	model, err := NewScanInput(store, dir, scannerConfig(), loc).Resolve(context.Background())
	require.NoError(t, err)
	// The declaration itself is a result.
	assert.False(t, model.Empty)
	assert.Equal(t, `1 result in 1 file for "unique"`, model.Message)
}

func TestScanInputWith(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "word\n")

	store := documents.NewStore()
	pos := protocol.Position{Line: 0, Character: 0}
	loc := protocol.Location{URI: documents.FilePathToURI(main), Range: protocol.Range{Start: pos, End: pos}}
	input := NewScanInput(store, dir, scannerConfig(), loc)

	moved := input.With(protocol.Position{Line: 3, Character: 1})
	assert.Equal(t, input.Kind(), moved.Kind())
	assert.Equal(t, input.Title(), moved.Title())
	assert.Equal(t, loc.URI, moved.Location().URI)
	assert.Equal(t, protocol.Position{Line: 3, Character: 1}, moved.Location().Range.Start)
	// The original is untouched.
	assert.Equal(t, pos, input.Location().Range.Start)
}

func TestReferencesModelNearest(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "v\nv\nv\n")
	other := writeFile(t, dir, "other.go", "v\n")

	store := documents.NewStore()
	pos := protocol.Position{Line: 1, Character: 0}
	mainURI := documents.FilePathToURI(main)
	loc := protocol.Location{URI: mainURI, Range: protocol.Range{Start: pos, End: pos}}

	model, err := NewScanInput(store, dir, scannerConfig(), loc).Resolve(context.Background())
	require.NoError(t, err)
	refs := model.Navigation.(*ReferencesModel)

	nearest := refs.Nearest(mainURI, protocol.Position{Line: 2, Character: 0})
	require.NotNil(t, nearest)
	assert.Equal(t, uint32(2), nearest.(*RefEntry).Range.Start.Line)

	// A document with no occurrences falls back to the first result.
	fallback := refs.Nearest(documents.FilePathToURI(filepath.Join(dir, "none.go")), protocol.Position{})
	require.NotNil(t, fallback)

	// Highlights cover only the requested document.
	otherURI := documents.FilePathToURI(other)
	assert.Len(t, refs.For(mainURI), 3)
	assert.Len(t, refs.For(otherURI), 1)
}

func TestReferencesModelRemove(t *testing.T) {
	file := &FileEntry{URI: "file:///work/a.go"}
	ref1 := &RefEntry{File: file, LineText: "one"}
	ref2 := &RefEntry{File: file, LineText: "two"}
	file.Refs = []*RefEntry{ref1, ref2}
	model := NewReferencesModel("w", []*FileEntry{file})

	var fired int
	sub := model.OnDidChange(func(node interface{}) { fired++ })
	defer sub.Dispose()

	model.Remove(ref1)
	assert.Equal(t, 1, fired)
	assert.False(t, model.IsEmpty())

	// Removing the last occurrence drops the file group too.
	model.Remove(ref2)
	assert.Equal(t, 2, fired)
	assert.True(t, model.IsEmpty())
}

func TestReferencesModelTreeItems(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.go", "value := 1\nprint(value)\n")

	store := documents.NewStore()
	pos := protocol.Position{Line: 0, Character: 0}
	loc := protocol.Location{URI: documents.FilePathToURI(main), Range: protocol.Range{Start: pos, End: pos}}

	model, err := NewScanInput(store, dir, scannerConfig(), loc).Resolve(context.Background())
	require.NoError(t, err)
	refs := model.Provider.(*ReferencesModel)
	ctx := context.Background()

	files, err := refs.GetChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)

	fileItem, err := refs.GetTreeItem(ctx, files[0])
	require.NoError(t, err)
	assert.Equal(t, "main.go", fileItem.Label)

	occurrences, err := refs.GetChildren(ctx, files[0])
	require.NoError(t, err)
	require.Len(t, occurrences, 2)

	refItem, err := refs.GetTreeItem(ctx, occurrences[1])
	require.NoError(t, err)
	assert.Equal(t, "print(value)", refItem.Label)
	assert.Equal(t, "2:7", refItem.Description)
	require.NotNil(t, refItem.Location)

	parent, err := refs.GetParent(ctx, occurrences[1])
	require.NoError(t, err)
	assert.Same(t, files[0], parent)
}
