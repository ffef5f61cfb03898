package view

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
	"symbols-view/src/internal/types"
)

// WordAnchor is a text-based bookmark: it captures the document version, a
// position, and the text fragment around it, so the position can be
// re-located after the document was edited.
type WordAnchor struct {
	store   types.DocumentStore
	docURI  uri.URI
	version int32
	pos     protocol.Position

	// fragment is the captured text starting at fragStart; offset is the
	// byte offset of pos inside the captured document.
	fragment  string
	fragStart int
	offset    int

	// window bounds how far from fragStart a re-anchored occurrence may
	// drift before the guess is rejected. 0 means unbounded.
	window int
}

// NewWordAnchor captures an anchor at pos in doc. The fragment is the word
// at pos, the non-whitespace token there, or empty when pos sits on
// whitespace (in which case re-anchoring always fails and callers fall back
// to the stored position).
func NewWordAnchor(store types.DocumentStore, doc types.Document, pos protocol.Position, window int) *WordAnchor {
	a := &WordAnchor{
		store:   store,
		docURI:  doc.URI(),
		version: doc.Version(),
		pos:     pos,
		offset:  doc.OffsetAt(pos),
		window:  window,
	}

	r, ok := doc.WordRangeAt(pos)
	if !ok {
		r, ok = documents.TokenRangeAt(doc, pos)
	}
	if ok {
		a.fragment = doc.TextIn(r)
		a.fragStart = doc.OffsetAt(r.Start)
	}
	return a
}

// Position returns the position as captured, without re-tracking
func (a *WordAnchor) Position() protocol.Position {
	return a.pos
}

// URI returns the anchored document
func (a *WordAnchor) URI() uri.URI {
	return a.docURI
}

// GuessedTrackedPosition re-locates the anchor in the current document. It
// returns the original position while the document is unchanged, the
// position of the captured fragment's occurrence nearest to the original
// offset after edits, or nil when no confident guess exists.
func (a *WordAnchor) GuessedTrackedPosition(ctx context.Context) *protocol.Position {
	doc, err := a.store.Open(ctx, a.docURI)
	if err != nil {
		return nil
	}

	if doc.Version() == a.version {
		pos := a.pos
		return &pos
	}

	if a.fragment == "" {
		return nil
	}

	text := doc.Text()
	best := -1
	for from := 0; ; {
		i := strings.Index(text[from:], a.fragment)
		if i < 0 {
			break
		}
		i += from
		if best < 0 || abs(i-a.fragStart) < abs(best-a.fragStart) {
			best = i
		}
		if i >= a.fragStart {
			// Occurrences only move further away from here on.
			break
		}
		from = i + 1
	}

	if best < 0 {
		return nil
	}
	if a.window > 0 && abs(best-a.fragStart) > a.window {
		return nil
	}

	pos := doc.PositionAt(best + (a.offset - a.fragStart))
	return &pos
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
