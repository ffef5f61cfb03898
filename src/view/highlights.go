package view

import (
	"go.lsp.dev/uri"

	"symbols-view/src/internal/types"
)

// highlightSession drives editor match decorations for the lifetime of one
// input session. Disposal clears the decorations, so a session never
// outlives its input.
type highlightSession struct {
	decorator  types.Decorator
	highlights Highlights
	docURI     uri.URI
}

func newHighlightSession(decorator types.Decorator, highlights Highlights, docURI uri.URI) *highlightSession {
	return &highlightSession{
		decorator:  decorator,
		highlights: highlights,
		docURI:     docURI,
	}
}

// Apply pushes the model's current ranges for the session document
func (s *highlightSession) Apply() {
	s.decorator.Highlight(s.docURI, s.highlights.For(s.docURI))
}

// Dispose removes all decorations applied by this session
func (s *highlightSession) Dispose() {
	s.decorator.ClearHighlights()
}
