package references

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.lsp.dev/protocol"

	"symbols-view/src/config"
	"symbols-view/src/documents"
	"symbols-view/src/internal/common"
	"symbols-view/src/internal/types"
	"symbols-view/src/view"
)

// KindTextReferences tags inputs resolved by the text scanner
const KindTextReferences = "textReferences"

// ScanInput is a view.TreeInput that resolves by scanning workspace files
// for whole-word occurrences of the token at its position.
type ScanInput struct {
	store types.DocumentStore
	root  string
	cfg   config.ScannerConfig
	loc   protocol.Location
	title string
}

// NewScanInput creates a text-scan search rooted at the workspace directory
// root, anchored at loc.
func NewScanInput(store types.DocumentStore, root string, cfg config.ScannerConfig, loc protocol.Location) *ScanInput {
	return &ScanInput{
		store: store,
		root:  root,
		cfg:   cfg,
		loc:   loc,
		title: "References",
	}
}

// Kind implements view.TreeInput
func (s *ScanInput) Kind() string { return KindTextReferences }

// Title implements view.TreeInput
func (s *ScanInput) Title() string { return s.title }

// Location implements view.TreeInput
func (s *ScanInput) Location() protocol.Location { return s.loc }

// With implements view.TreeInput
func (s *ScanInput) With(pos protocol.Position) view.TreeInput {
	clone := *s
	clone.loc = protocol.Location{
		URI:   s.loc.URI,
		Range: protocol.Range{Start: pos, End: pos},
	}
	return &clone
}

// Resolve implements view.TreeInput. It extracts the word at the input
// position and scans the workspace with a bounded worker pool. No word at
// the position resolves to an empty model, not an error.
func (s *ScanInput) Resolve(ctx context.Context) (*view.TreeModel, error) {
	doc, err := s.store.Open(ctx, s.loc.URI)
	if err != nil {
		return nil, err
	}

	wordRange, ok := doc.WordRangeAt(s.loc.Range.Start)
	if !ok {
		return &view.TreeModel{Empty: true}, nil
	}
	word := doc.TextIn(wordRange)

	paths, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	byPath := make(map[string]*FileEntry)

	g, gctx := errgroup.WithContext(ctx)
	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			entry, err := s.scanFile(gctx, path, word)
			if err != nil {
				// Unreadable files are skipped, not fatal: the scan
				// races against editors and build tools.
				common.ScanLogger.Debug("skipping %s: %v", path, err)
				return nil
			}
			if entry == nil {
				return nil
			}
			mu.Lock()
			byPath[path] = entry
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*FileEntry, 0, len(byPath))
	for _, entry := range byPath {
		files = append(files, entry)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].URI < files[j].URI
	})

	model := NewReferencesModel(word, files)
	return &view.TreeModel{
		Provider:   model,
		Empty:      model.IsEmpty(),
		Message:    model.StatusMessage(),
		Navigation: model,
		Highlights: model,
	}, nil
}

// collectFiles walks the workspace applying the scanner's include/exclude
// configuration.
func (s *ScanInput) collectFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, skip := range s.cfg.ExcludeDirs {
				if d.Name() == skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !s.matchesInclude(d.Name()) {
			return nil
		}
		if s.cfg.MaxFileSizeKB > 0 {
			if info, err := d.Info(); err == nil && info.Size() > int64(s.cfg.MaxFileSizeKB)*1024 {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, common.WrapProcessingError("workspace walk failed", err)
	}
	return paths, nil
}

func (s *ScanInput) matchesInclude(name string) bool {
	if len(s.cfg.Include) == 0 {
		return true
	}
	for _, pattern := range s.cfg.Include {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// scanFile returns the whole-word occurrences of word in one file, or nil
// when it has none.
func (s *ScanInput) scanFile(ctx context.Context, path string, word string) (*FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(content)
	if !strings.Contains(text, word) {
		return nil, nil
	}

	entry := &FileEntry{URI: documents.FilePathToURI(path)}
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for col := 0; ; {
			i := strings.Index(line[col:], word)
			if i < 0 {
				break
			}
			i += col
			if isWholeWord(line, i, len(word)) {
				entry.Refs = append(entry.Refs, &RefEntry{
					File: entry,
					Range: protocol.Range{
						Start: protocol.Position{Line: uint32(lineNo), Character: uint32(i)},
						End:   protocol.Position{Line: uint32(lineNo), Character: uint32(i + len(word))},
					},
					LineText: line,
				})
			}
			col = i + len(word)
		}
	}

	if len(entry.Refs) == 0 {
		return nil, nil
	}
	return entry, nil
}

func isWholeWord(line string, start, length int) bool {
	if start > 0 && isWordChar(line[start-1]) {
		return false
	}
	end := start + length
	if end < len(line) && isWordChar(line[end]) {
		return false
	}
	return true
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
