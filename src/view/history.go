package view

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
	"symbols-view/src/internal/common"
	"symbols-view/src/internal/errors"
	"symbols-view/src/internal/types"
)

// placeholderWord labels a history entry whose anchor position carried no
// extractable text.
const placeholderWord = "???"

// HistoryItem is one remembered search. Immutable once created.
type HistoryItem struct {
	// Key deduplicates entries: two searches with the same anchor start
	// position, document, and title share one history slot.
	Key string

	// Word is the text token that was at the search position.
	Word string

	// Description is the human-readable origin, e.g. "store.go - 14:7".
	Description string

	// Anchor re-locates the search position after edits.
	Anchor *WordAnchor

	// Input is the original search input; re-runs derive from it.
	Input TreeInput
}

func historyKey(docURI uri.URI, pos protocol.Position, title string) string {
	return fmt.Sprintf("%s:%d:%d:%s", docURI, pos.Line, pos.Character, title)
}

// TreeInputHistory is an MRU cache of past search inputs. It doubles as the
// data provider shown in the panel while no search result is active, and it
// owns the re-run, show, pick, and clear history commands.
type TreeInputHistory struct {
	mu      sync.Mutex
	emitter types.Emitter

	// order holds items oldest-first; byKey indexes them for dedup.
	order []*HistoryItem
	byKey map[string]*HistoryItem

	tree         *SymbolsTree
	host         Host
	maxEntries   int
	anchorWindow int

	registrations types.DisposableStore
	log           *common.SafeLogger
}

func newTreeInputHistory(tree *SymbolsTree, host Host, maxEntries, anchorWindow int) *TreeInputHistory {
	h := &TreeInputHistory{
		byKey:        make(map[string]*HistoryItem),
		tree:         tree,
		host:         host,
		maxEntries:   maxEntries,
		anchorWindow: anchorWindow,
		log:          common.HistoryLogger,
	}

	h.host.ContextKeys.Set(ContextKeyHasHistory, false)

	h.registrations.Add(host.Commands.Register(CmdRerunHistoryItem, func(ctx context.Context, args ...interface{}) error {
		item, err := historyItemArg(args)
		if err != nil {
			return err
		}
		return h.Rerun(ctx, item)
	}))
	h.registrations.Add(host.Commands.Register(CmdShowHistoryItem, func(ctx context.Context, args ...interface{}) error {
		item, err := historyItemArg(args)
		if err != nil {
			return err
		}
		return h.ShowItem(ctx, item)
	}))
	h.registrations.Add(host.Commands.Register(CmdPickFromHistory, func(ctx context.Context, args ...interface{}) error {
		return h.Pick(ctx)
	}))
	h.registrations.Add(host.Commands.Register(CmdClearHistory, func(ctx context.Context, args ...interface{}) error {
		h.Clear()
		return nil
	}))

	return h
}

func historyItemArg(args []interface{}) (*HistoryItem, error) {
	if len(args) == 0 {
		return nil, errors.NewValidationError("args", "history item argument is required")
	}
	item, ok := args[0].(*HistoryItem)
	if !ok {
		return nil, errors.NewValidationError("args", "argument is not a history item")
	}
	return item, nil
}

// Size returns the number of retained items
func (h *TreeInputHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Items returns the retained items most-recent-first
func (h *TreeInputHistory) Items() []*HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	items := make([]*HistoryItem, 0, len(h.order))
	for i := len(h.order) - 1; i >= 0; i-- {
		items = append(items, h.order[i])
	}
	return items
}

// Add records input as the most recent search. A key collision replaces the
// existing entry and moves it to most-recent. The document is opened to
// capture the word and anchor at the input position; when it cannot be
// opened nothing is recorded.
func (h *TreeInputHistory) Add(ctx context.Context, input TreeInput) error {
	item, err := h.capture(ctx, input)
	if err != nil {
		return err
	}
	h.commit(item)
	return nil
}

// capture builds the history entry for input without recording it. It opens
// the document to extract the display word and the re-anchoring data, so
// callers holding state locks run it first and commit later.
func (h *TreeInputHistory) capture(ctx context.Context, input TreeInput) (*HistoryItem, error) {
	loc := input.Location()
	doc, err := h.host.Documents.Open(ctx, loc.URI)
	if err != nil {
		return nil, common.WrapProcessingError("failed to open document for history", err)
	}

	pos := loc.Range.Start
	anchor := NewWordAnchor(h.host.Documents, doc, pos, h.anchorWindow)

	word := placeholderWord
	if r, ok := doc.WordRangeAt(pos); ok {
		word = doc.TextIn(r)
	} else if r, ok := documents.TokenRangeAt(doc, pos); ok {
		word = doc.TextIn(r)
	}

	return &HistoryItem{
		Key:         historyKey(loc.URI, pos, input.Title()),
		Word:        word,
		Description: fmt.Sprintf("%s - %d:%d", filepath.Base(documents.URIToFilePath(loc.URI)), pos.Line+1, pos.Character+1),
		Anchor:      anchor,
		Input:       input,
	}, nil
}

// commit records a captured entry as the most recent search
func (h *TreeInputHistory) commit(item *HistoryItem) {
	h.mu.Lock()
	if existing, ok := h.byKey[item.Key]; ok {
		h.removeLocked(existing)
	}
	h.byKey[item.Key] = item
	h.order = append(h.order, item)
	if h.maxEntries > 0 && len(h.order) > h.maxEntries {
		h.removeLocked(h.order[0])
	}
	h.mu.Unlock()

	h.host.ContextKeys.Set(ContextKeyHasHistory, true)
	h.emitter.Fire(nil)
}

// Remove drops item from the cache
func (h *TreeInputHistory) Remove(item *HistoryItem) {
	h.mu.Lock()
	h.removeLocked(item)
	empty := len(h.order) == 0
	h.mu.Unlock()

	if empty {
		h.host.ContextKeys.Set(ContextKeyHasHistory, false)
	}
	h.emitter.Fire(nil)
}

func (h *TreeInputHistory) removeLocked(item *HistoryItem) {
	if _, ok := h.byKey[item.Key]; !ok || h.byKey[item.Key] != item {
		return
	}
	delete(h.byKey, item.Key)
	for i, it := range h.order {
		if it == item {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cache
func (h *TreeInputHistory) Clear() {
	h.mu.Lock()
	h.order = nil
	h.byKey = make(map[string]*HistoryItem)
	h.mu.Unlock()

	h.host.ContextKeys.Set(ContextKeyHasHistory, false)
	h.emitter.Fire(nil)
}

// refreshedPosition re-anchors item's position, falling back to the stored
// position when the anchor text can no longer be found.
func (h *TreeInputHistory) refreshedPosition(ctx context.Context, item *HistoryItem) protocol.Position {
	if pos := item.Anchor.GuessedTrackedPosition(ctx); pos != nil {
		return *pos
	}
	return item.Anchor.Position()
}

// Rerun removes item and feeds its input, re-anchored to the current
// document content, back into the orchestrator. The item re-enters history
// only if the re-run itself resolves non-empty.
func (h *TreeInputHistory) Rerun(ctx context.Context, item *HistoryItem) error {
	h.Remove(item)
	pos := h.refreshedPosition(ctx, item)
	h.tree.SetInput(ctx, item.Input.With(pos))
	return nil
}

// ShowItem opens the editor at item's re-anchored position without starting
// a new search.
func (h *TreeInputHistory) ShowItem(ctx context.Context, item *HistoryItem) error {
	pos := h.refreshedPosition(ctx, item)
	loc := protocol.Location{
		URI:   item.Anchor.URI(),
		Range: protocol.Range{Start: pos, End: pos},
	}
	return h.host.Navigator.OpenEditor(ctx, loc)
}

// Pick presents all items for interactive selection and re-runs the chosen
// one. A dismissed picker is not an error.
func (h *TreeInputHistory) Pick(ctx context.Context) error {
	items := h.Items()
	picks := make([]types.PickItem, len(items))
	for i, item := range items {
		picks[i] = types.PickItem{
			Label:       item.Word,
			Description: item.Description,
			Payload:     item,
		}
	}

	selected, err := h.host.QuickPick.Pick(ctx, picks)
	if err != nil {
		return common.WrapProcessingError("history pick failed", err)
	}
	if selected == nil {
		return nil
	}
	return h.Rerun(ctx, selected.Payload.(*HistoryItem))
}

// GetTreeItem implements types.DataProvider
func (h *TreeInputHistory) GetTreeItem(ctx context.Context, node interface{}) (types.TreeItem, error) {
	item, ok := node.(*HistoryItem)
	if !ok {
		return types.TreeItem{}, errors.NewValidationError("node", "not a history item")
	}
	return types.TreeItem{
		Label:        item.Word,
		Description:  item.Description,
		Tooltip:      fmt.Sprintf("Re-run %s for %q", item.Input.Title(), item.Word),
		ContextValue: "historyItem",
		Collapsible:  types.CollapsibleNone,
		// Activating an entry re-runs the search; plain navigation stays
		// available through the show command.
		Command: CmdRerunHistoryItem,
	}, nil
}

// GetChildren implements types.DataProvider; history items are a flat list
func (h *TreeInputHistory) GetChildren(ctx context.Context, node interface{}) ([]interface{}, error) {
	if node != nil {
		return nil, nil
	}
	items := h.Items()
	children := make([]interface{}, len(items))
	for i, item := range items {
		children[i] = item
	}
	return children, nil
}

// GetParent implements types.DataProvider
func (h *TreeInputHistory) GetParent(ctx context.Context, node interface{}) (interface{}, error) {
	return nil, nil
}

// OnDidChange implements types.DataProvider
func (h *TreeInputHistory) OnDidChange(listener func(node interface{})) types.Disposable {
	return h.emitter.Subscribe(listener)
}

// Dispose unregisters the history commands and resets the history flag
func (h *TreeInputHistory) Dispose() {
	h.registrations.Dispose()
	h.host.ContextKeys.Reset(ContextKeyHasHistory)
}
