package types

import (
	"context"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// CollapsibleState controls whether a tree node renders expandable
type CollapsibleState int

const (
	// CollapsibleNone marks a leaf node
	CollapsibleNone CollapsibleState = iota

	// CollapsibleCollapsed marks an expandable node that starts collapsed
	CollapsibleCollapsed

	// CollapsibleExpanded marks an expandable node that starts expanded
	CollapsibleExpanded
)

// TreeItem is the renderable description of one tree node. The host widget
// asks the active DataProvider for one of these per visible node; it never
// inspects the node value itself.
type TreeItem struct {
	Label        string
	Description  string
	Tooltip      string
	ContextValue string
	Collapsible  CollapsibleState

	// Location, when set, is where the editor navigates on activation.
	Location *protocol.Location

	// Command, when non-empty, is invoked through the registry on
	// activation instead of plain navigation. The node is passed as the
	// single argument.
	Command string
}

// DataProvider supplies tree content to the view widget. Nodes are opaque
// handles owned by the provider; nil as the node argument of GetChildren
// requests the root level.
type DataProvider interface {
	// GetTreeItem returns the renderable description of a node.
	GetTreeItem(ctx context.Context, node interface{}) (TreeItem, error)

	// GetChildren returns the children of node, or the root nodes when
	// node is nil.
	GetChildren(ctx context.Context, node interface{}) ([]interface{}, error)

	// GetParent returns the parent of node, or nil for root nodes.
	GetParent(ctx context.Context, node interface{}) (interface{}, error)

	// OnDidChange registers a listener for content changes. A nil node in
	// the notification means the whole tree changed. The returned
	// Disposable unregisters the listener.
	OnDidChange(listener func(node interface{})) Disposable
}

// RevealOptions controls how a tree node is brought into view
type RevealOptions struct {
	Select bool
	Focus  bool
	Expand bool
}

// TreeView is the host tree widget. The panel core drives it through this
// interface and never owns rendering or layout.
type TreeView interface {
	// Show brings the view into the host's focus.
	Show(ctx context.Context) error

	// SetTitle / Title manage the panel title.
	SetTitle(title string)
	Title() string

	// SetMessage / Message manage the status text shown above the tree.
	// An empty message hides the status area.
	SetMessage(message string)
	Message() string

	// Visible reports whether the view is currently on screen.
	Visible() bool

	// Reveal scrolls to node, optionally selecting and focusing it and
	// expanding its ancestors.
	Reveal(ctx context.Context, node interface{}, opts RevealOptions) error

	Dispose()
}

// ContextKeys publishes named flags consumed by the host's conditional UI
// enablement rules.
type ContextKeys interface {
	Set(key string, value interface{})
	Reset(key string)
}

// CommandHandler handles one invocation of a registered command
type CommandHandler func(ctx context.Context, args ...interface{}) error

// CommandRegistry registers named commands with the host and invokes them
type CommandRegistry interface {
	Register(id string, handler CommandHandler) Disposable
	Execute(ctx context.Context, id string, args ...interface{}) error
}

// PickItem is one entry of a quick-pick list
type PickItem struct {
	Label       string
	Description string
	Payload     interface{}
}

// QuickPick presents a list for interactive selection. A nil item with a
// nil error means the user dismissed the picker.
type QuickPick interface {
	Pick(ctx context.Context, items []PickItem) (*PickItem, error)
}

// Navigator opens documents in the host editor
type Navigator interface {
	OpenEditor(ctx context.Context, loc protocol.Location) error
}

// Decorator applies match highlights to the host editor. Optional: hosts
// without decoration support pass nil and highlight sessions are skipped.
type Decorator interface {
	Highlight(docURI uri.URI, ranges []protocol.Range)
	ClearHighlights()
}

// Document is an immutable snapshot of one open document
type Document interface {
	URI() uri.URI

	// Version increases with every content change of the underlying
	// document. Two snapshots with equal versions have equal text.
	Version() int32

	Text() string
	LineCount() int

	// WordRangeAt returns the range of the word containing pos, or
	// ok=false when pos does not touch a word.
	WordRangeAt(pos protocol.Position) (protocol.Range, bool)

	// TextIn returns the text covered by r, clamped to the document.
	TextIn(r protocol.Range) string

	// OffsetAt converts a position to a byte offset, clamped to the
	// document.
	OffsetAt(pos protocol.Position) int

	// PositionAt converts a byte offset to a position, clamped to the
	// document.
	PositionAt(offset int) protocol.Position

	// ContainsPosition reports whether pos addresses actual content,
	// i.e. is not past the last line or past the end of its line.
	ContainsPosition(pos protocol.Position) bool
}

// DocumentStore opens document snapshots by URI
type DocumentStore interface {
	Open(ctx context.Context, docURI uri.URI) (Document, error)
}
