// Package references provides a concrete search input for the symbols
// panel: a whole-word text scan across a workspace, resolved into a
// two-level tree of files and the reference occurrences inside them.
package references

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
	"symbols-view/src/internal/errors"
	"symbols-view/src/internal/types"
)

// FileEntry groups the references found in one file
type FileEntry struct {
	URI  uri.URI
	Refs []*RefEntry
}

// RefEntry is a single reference occurrence
type RefEntry struct {
	File     *FileEntry
	Range    protocol.Range
	LineText string
}

// Location returns the occurrence as an LSP location
func (r *RefEntry) Location() protocol.Location {
	return protocol.Location{URI: r.File.URI, Range: r.Range}
}

// ReferencesModel is the resolved tree of a text reference scan. It
// implements the panel's data-provider, navigation, and highlights
// contracts.
type ReferencesModel struct {
	mu      sync.Mutex
	word    string
	files   []*FileEntry
	emitter types.Emitter
}

// NewReferencesModel builds a model over the given file groups
func NewReferencesModel(word string, files []*FileEntry) *ReferencesModel {
	return &ReferencesModel{word: word, files: files}
}

// Word returns the searched token
func (m *ReferencesModel) Word() string {
	return m.word
}

// IsEmpty reports whether the scan found nothing
func (m *ReferencesModel) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files) == 0
}

func (m *ReferencesModel) counts() (refs, files int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		refs += len(f.Refs)
	}
	return refs, len(m.files)
}

// StatusMessage summarizes the result, e.g. "12 results in 3 files"
func (m *ReferencesModel) StatusMessage() string {
	refs, files := m.counts()
	result := "results"
	if refs == 1 {
		result = "result"
	}
	file := "files"
	if files == 1 {
		file = "file"
	}
	return fmt.Sprintf("%d %s in %d %s for %q", refs, result, files, file, m.word)
}

// Remove deletes one occurrence (or a whole file group) from the model and
// fires a change notification.
func (m *ReferencesModel) Remove(node interface{}) {
	m.mu.Lock()
	switch n := node.(type) {
	case *FileEntry:
		m.removeFileLocked(n)
	case *RefEntry:
		file := n.File
		for i, ref := range file.Refs {
			if ref == n {
				file.Refs = append(file.Refs[:i], file.Refs[i+1:]...)
				break
			}
		}
		if len(file.Refs) == 0 {
			m.removeFileLocked(file)
		}
	}
	m.mu.Unlock()
	m.emitter.Fire(nil)
}

func (m *ReferencesModel) removeFileLocked(file *FileEntry) {
	for i, f := range m.files {
		if f == file {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return
		}
	}
}

// Nearest implements view.Navigation: the occurrence in docURI closest to
// pos, or the first occurrence overall when the document has none.
func (m *ReferencesModel) Nearest(docURI uri.URI, pos protocol.Position) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.files) == 0 {
		return nil
	}

	var best *RefEntry
	for _, f := range m.files {
		if f.URI != docURI {
			continue
		}
		for _, ref := range f.Refs {
			if best == nil || positionDistance(ref.Range.Start, pos) < positionDistance(best.Range.Start, pos) {
				best = ref
			}
		}
	}
	if best != nil {
		return best
	}
	if len(m.files[0].Refs) > 0 {
		return m.files[0].Refs[0]
	}
	return nil
}

// positionDistance orders candidates by line delta first, column delta as
// the tie-breaker.
func positionDistance(a, b protocol.Position) int {
	lineDelta := int(a.Line) - int(b.Line)
	if lineDelta < 0 {
		lineDelta = -lineDelta
	}
	charDelta := int(a.Character) - int(b.Character)
	if charDelta < 0 {
		charDelta = -charDelta
	}
	return lineDelta*10000 + charDelta
}

// For implements view.Highlights: all occurrence ranges inside docURI
func (m *ReferencesModel) For(docURI uri.URI) []protocol.Range {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ranges []protocol.Range
	for _, f := range m.files {
		if f.URI != docURI {
			continue
		}
		for _, ref := range f.Refs {
			ranges = append(ranges, ref.Range)
		}
	}
	return ranges
}

// GetTreeItem implements types.DataProvider
func (m *ReferencesModel) GetTreeItem(ctx context.Context, node interface{}) (types.TreeItem, error) {
	switch n := node.(type) {
	case *FileEntry:
		path := documents.URIToFilePath(n.URI)
		return types.TreeItem{
			Label:        filepath.Base(path),
			Description:  filepath.Dir(path),
			ContextValue: "fileReferences",
			Collapsible:  types.CollapsibleExpanded,
		}, nil
	case *RefEntry:
		loc := n.Location()
		return types.TreeItem{
			Label:        strings.TrimSpace(n.LineText),
			Description:  fmt.Sprintf("%d:%d", n.Range.Start.Line+1, n.Range.Start.Character+1),
			ContextValue: "referenceItem",
			Collapsible:  types.CollapsibleNone,
			Location:     &loc,
		}, nil
	default:
		return types.TreeItem{}, errors.NewValidationError("node", "not a reference tree node")
	}
}

// GetChildren implements types.DataProvider
func (m *ReferencesModel) GetChildren(ctx context.Context, node interface{}) ([]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch n := node.(type) {
	case nil:
		children := make([]interface{}, len(m.files))
		for i, f := range m.files {
			children[i] = f
		}
		return children, nil
	case *FileEntry:
		children := make([]interface{}, len(n.Refs))
		for i, ref := range n.Refs {
			children[i] = ref
		}
		return children, nil
	default:
		return nil, nil
	}
}

// GetParent implements types.DataProvider
func (m *ReferencesModel) GetParent(ctx context.Context, node interface{}) (interface{}, error) {
	if ref, ok := node.(*RefEntry); ok {
		return ref.File, nil
	}
	return nil, nil
}

// OnDidChange implements types.DataProvider
func (m *ReferencesModel) OnDidChange(listener func(node interface{})) types.Disposable {
	return m.emitter.Subscribe(listener)
}
