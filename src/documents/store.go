package documents

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/internal/common"
	"symbols-view/src/internal/types"
)

// Store is a file-backed types.DocumentStore. Disk content can be shadowed
// with Apply, which is how embedders feed unsaved editor buffers (and how
// tests simulate edits for anchor re-tracking).
type Store struct {
	mu       sync.Mutex
	overlays map[uri.URI]*overlay
}

type overlay struct {
	content string
	version int32
}

// NewStore creates an empty document store
func NewStore() *Store {
	return &Store{overlays: make(map[uri.URI]*overlay)}
}

// Open returns an immutable snapshot of the document at docURI. Overlay
// content wins over disk content.
func (s *Store) Open(ctx context.Context, docURI uri.URI) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ov, ok := s.overlays[docURI]
	s.mu.Unlock()
	if ok {
		return newDocument(docURI, ov.content, ov.version), nil
	}

	path := URIToFilePath(docURI)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapProcessingError("failed to open document", err)
	}
	return newDocument(docURI, string(content), 1), nil
}

// Apply replaces the content of docURI and bumps its version. Snapshots
// handed out earlier are unaffected.
func (s *Store) Apply(docURI uri.URI, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ov, ok := s.overlays[docURI]; ok {
		ov.content = content
		ov.version++
		return
	}
	// Version 1 is reserved for pristine disk content.
	s.overlays[docURI] = &overlay{content: content, version: 2}
}

// document is an immutable snapshot implementing types.Document
type document struct {
	uri     uri.URI
	text    string
	version int32

	// lineStarts[i] is the byte offset of the first character of line i
	lineStarts []int
}

func newDocument(docURI uri.URI, text string, version int32) *document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &document{uri: docURI, text: text, version: version, lineStarts: starts}
}

func (d *document) URI() uri.URI   { return d.uri }
func (d *document) Version() int32 { return d.version }
func (d *document) Text() string   { return d.text }
func (d *document) LineCount() int { return len(d.lineStarts) }

// lineEnd returns the offset one past the last content character of line,
// excluding the trailing newline.
func (d *document) lineEnd(line int) int {
	if line+1 < len(d.lineStarts) {
		end := d.lineStarts[line+1] - 1 // drop '\n'
		if end > 0 && end-1 >= d.lineStarts[line] && d.text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(d.text)
}

// OffsetAt converts a position to a byte offset, clamped to the document
func (d *document) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	if line < 0 {
		return 0
	}
	offset := d.lineStarts[line] + int(pos.Character)
	if end := d.lineEnd(line); offset > end {
		offset = end
	}
	return offset
}

// PositionAt converts a byte offset to a position, clamped to the document
func (d *document) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(offset - d.lineStarts[line]),
	}
}

// ContainsPosition reports whether pos addresses actual content
func (d *document) ContainsPosition(pos protocol.Position) bool {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return false
	}
	return d.lineStarts[line]+int(pos.Character) <= d.lineEnd(line)
}

// TextIn returns the text covered by r, clamped to the document
func (d *document) TextIn(r protocol.Range) string {
	start := d.OffsetAt(r.Start)
	end := d.OffsetAt(r.End)
	if end < start {
		start, end = end, start
	}
	return d.text[start:end]
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// WordRangeAt returns the identifier-like word containing pos. A position
// sitting just past the last character of a word still counts as touching
// it, matching editor word-range semantics.
func (d *document) WordRangeAt(pos protocol.Position) (protocol.Range, bool) {
	if !d.ContainsPosition(pos) {
		return protocol.Range{}, false
	}

	offset := d.OffsetAt(pos)
	lineStart := d.lineStarts[pos.Line]
	lineEnd := d.lineEnd(int(pos.Line))

	anchor := -1
	if offset < lineEnd && isWordByte(d.text[offset]) {
		anchor = offset
	} else if offset > lineStart && isWordByte(d.text[offset-1]) {
		anchor = offset - 1
	}
	if anchor < 0 {
		return protocol.Range{}, false
	}

	start, end := anchor, anchor+1
	for start > lineStart && isWordByte(d.text[start-1]) {
		start--
	}
	for end < lineEnd && isWordByte(d.text[end]) {
		end++
	}
	return protocol.Range{Start: d.PositionAt(start), End: d.PositionAt(end)}, true
}

// LineText returns the content of line without its trailing newline
func (d *document) LineText(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	return d.text[d.lineStarts[line]:d.lineEnd(line)]
}

// TokenRangeAt returns the longest contiguous run of non-whitespace
// characters touching pos. Used as the fallback when no identifier-like
// word exists at a history anchor.
func TokenRangeAt(doc types.Document, pos protocol.Position) (protocol.Range, bool) {
	if !doc.ContainsPosition(pos) {
		return protocol.Range{}, false
	}

	text := doc.Text()
	offset := doc.OffsetAt(pos)

	isToken := func(i int) bool {
		b := text[i]
		return !strings.ContainsRune(" \t\r\n", rune(b))
	}

	anchor := -1
	if offset < len(text) && isToken(offset) {
		anchor = offset
	} else if offset > 0 && isToken(offset-1) {
		anchor = offset - 1
	}
	if anchor < 0 {
		return protocol.Range{}, false
	}

	start, end := anchor, anchor+1
	for start > 0 && isToken(start-1) {
		start--
	}
	for end < len(text) && isToken(end) {
		end++
	}
	return protocol.Range{Start: doc.PositionAt(start), End: doc.PositionAt(end)}, true
}
