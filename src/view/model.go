// Package view implements the tree-view core of the references/symbols side
// panel: input lifecycle, asynchronous model resolution with
// last-writer-wins supersession, a swappable data-provider delegate, and an
// MRU history of past searches. Rendering, command dispatch, and document
// access are delegated to a host embedder through the interfaces in
// internal/types.
package view

import (
	"context"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/internal/types"
)

// Command identifiers registered with the host command registry.
const (
	CmdClear            = "symbolsView.clear"
	CmdClearHistory     = "symbolsView.clearHistory"
	CmdRerunHistoryItem = "symbolsView.rerunHistoryItem"
	CmdShowHistoryItem  = "symbolsView.showHistoryItem"
	CmdPickFromHistory  = "symbolsView.pickFromHistory"
)

// Context keys published for the host's conditional UI enablement.
const (
	ContextKeySource     = "symbolsView.source"
	ContextKeyIsActive   = "symbolsView.isActive"
	ContextKeyHasResult  = "symbolsView.hasResult"
	ContextKeyHasHistory = "symbolsView.hasHistory"
)

// Status messages shown when no result is on screen.
const (
	msgNoResults            = "No results found."
	msgNoResultsWithHistory = "No results found. Re-run a previous search from history."
)

// TreeInput describes one symbol search request: where it points, how it
// resolves, and how to rebuild it at a different position. Inputs are
// single-use; the orchestrator compares identity to detect whether a newer
// input superseded an in-flight resolution.
type TreeInput interface {
	// Kind tags the resolver family (e.g. "textReferences"). The
	// orchestrator preserves the status message across inputs of the
	// same kind and publishes the tag as the source context key.
	Kind() string

	// Title is the panel title while this input's result is shown.
	Title() string

	// Location is the document position the search starts from.
	Location() protocol.Location

	// Resolve produces the result model. Called at most once per input.
	Resolve(ctx context.Context) (*TreeModel, error)

	// With returns a new input of the same kind and title anchored at a
	// different position.
	With(pos protocol.Position) TreeInput
}

// Navigation lets the orchestrator find the result node nearest to a
// document position.
type Navigation interface {
	Nearest(docURI uri.URI, pos protocol.Position) interface{}
}

// Highlights exposes the match ranges of a model per document.
type Highlights interface {
	For(docURI uri.URI) []protocol.Range
}

// TreeModel is the resolved result of a TreeInput.
type TreeModel struct {
	// Provider serves the result tree. May be nil when Empty.
	Provider types.DataProvider

	// Empty marks a resolution that found nothing; the orchestrator
	// treats it exactly like a cleared input.
	Empty bool

	// Message is the status text shown above the tree.
	Message string

	// Navigation, when set, drives reveal-nearest after resolution.
	Navigation Navigation

	// Highlights, when set, drives the editor highlight session.
	Highlights Highlights

	// OnDispose, when set, is called once when the model's session ends.
	OnDispose func()
}

func (m *TreeModel) dispose() {
	if m.OnDispose != nil {
		m.OnDispose()
	}
}
