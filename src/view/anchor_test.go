package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
)

func TestWordAnchorUnchangedDocument(t *testing.T) {
	store := documents.NewStore()
	docURI := uri.URI("file:///work/main.go")
	store.Apply(docURI, "func handleRequest() {\n\thandleRequest()\n}\n")

	ctx := context.Background()
	doc, err := store.Open(ctx, docURI)
	require.NoError(t, err)

	pos := protocol.Position{Line: 0, Character: 5}
	anchor := NewWordAnchor(store, doc, pos, 0)

	guessed := anchor.GuessedTrackedPosition(ctx)
	require.NotNil(t, guessed)
	assert.Equal(t, pos, *guessed)
}

func TestWordAnchorTracksAcrossEdit(t *testing.T) {
	store := documents.NewStore()
	docURI := uri.URI("file:///work/main.go")
	store.Apply(docURI, "func handleRequest() {\n}\n")

	ctx := context.Background()
	doc, err := store.Open(ctx, docURI)
	require.NoError(t, err)

	// Anchor on "handleRequest".
	anchor := NewWordAnchor(store, doc, protocol.Position{Line: 0, Character: 5}, 0)

	// Insert two lines above; the word moves down.
	store.Apply(docURI, "// Package comment\n\nfunc handleRequest() {\n}\n")

	guessed := anchor.GuessedTrackedPosition(ctx)
	require.NotNil(t, guessed)
	assert.Equal(t, protocol.Position{Line: 2, Character: 5}, *guessed)
}

func TestWordAnchorLostText(t *testing.T) {
	store := documents.NewStore()
	docURI := uri.URI("file:///work/main.go")
	store.Apply(docURI, "func handleRequest() {\n}\n")

	ctx := context.Background()
	doc, err := store.Open(ctx, docURI)
	require.NoError(t, err)

	pos := protocol.Position{Line: 0, Character: 5}
	anchor := NewWordAnchor(store, doc, pos, 0)

	// The anchored word disappears entirely.
	store.Apply(docURI, "func serveHTTP() {\n}\n")

	assert.Nil(t, anchor.GuessedTrackedPosition(ctx))
	// Callers fall back to the stored position.
	assert.Equal(t, pos, anchor.Position())
}

func TestWordAnchorRespectsSearchWindow(t *testing.T) {
	store := documents.NewStore()
	docURI := uri.URI("file:///work/main.go")
	store.Apply(docURI, "needle\n")

	ctx := context.Background()
	doc, err := store.Open(ctx, docURI)
	require.NoError(t, err)

	anchor := NewWordAnchor(store, doc, protocol.Position{Line: 0, Character: 0}, 10)

	// The word survives but drifts far past the window.
	padding := make([]byte, 0, 600)
	for i := 0; i < 100; i++ {
		padding = append(padding, "x := 1\n"...)
	}
	store.Apply(docURI, string(padding)+"needle\n")

	assert.Nil(t, anchor.GuessedTrackedPosition(ctx))
}

func TestWordAnchorWhitespacePosition(t *testing.T) {
	store := documents.NewStore()
	docURI := uri.URI("file:///work/main.go")
	store.Apply(docURI, "a  b\n")

	ctx := context.Background()
	doc, err := store.Open(ctx, docURI)
	require.NoError(t, err)

	// Position 2 touches neither 'a' nor 'b', so no fragment is captured
	// and re-anchoring can never succeed.
	anchor := NewWordAnchor(store, doc, protocol.Position{Line: 0, Character: 2}, 0)

	store.Apply(docURI, "a   b\n")
	assert.Nil(t, anchor.GuessedTrackedPosition(ctx))
}
