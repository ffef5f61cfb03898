package view

import (
	"context"
	"sync"

	"symbols-view/src/internal/common"
	"symbols-view/src/internal/errors"
	"symbols-view/src/internal/types"
)

// Host bundles the capabilities the panel core needs from its embedder.
// Decorator is optional; every other field is required.
type Host struct {
	View        types.TreeView
	ContextKeys types.ContextKeys
	Commands    types.CommandRegistry
	Documents   types.DocumentStore
	Navigator   types.Navigator
	QuickPick   types.QuickPick
	Decorator   types.Decorator
}

// Options tunes orchestrator behavior
type Options struct {
	// DefaultTitle is the panel title shown while no search is active.
	DefaultTitle string

	// HistoryMaxEntries bounds the history cache; 0 means unbounded.
	HistoryMaxEntries int

	// AnchorSearchWindow bounds history position re-tracking; 0 searches
	// the whole document.
	AnchorSearchWindow int
}

// SymbolsTree orchestrates the panel: it owns the current input, drives
// resolution, swaps the delegate's backing provider, scopes per-session
// resources (highlights, change listeners, model cleanup) to one input's
// lifetime, and falls back to the history view when there is nothing to
// show.
//
// At most one input is live. A resolution finishing after a newer SetInput
// call is discarded wholesale: supersession is detected by a generation
// token, not by aborting the resolving work.
type SymbolsTree struct {
	mu sync.Mutex

	host     Host
	opts     Options
	delegate *ProviderDelegate
	history  *TreeInputHistory

	input      TreeInput
	generation uint64
	nav        Navigation
	session    *types.DisposableStore

	registrations types.DisposableStore
	log           *common.SafeLogger
}

// NewSymbolsTree creates the orchestrator and its history manager, installs
// the history view as the initial tree content, and registers the panel
// commands with the host.
func NewSymbolsTree(host Host, opts Options) *SymbolsTree {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = "References"
	}

	t := &SymbolsTree{
		host:     host,
		opts:     opts,
		delegate: NewProviderDelegate(),
		log:      common.ViewLogger,
	}
	t.history = newTreeInputHistory(t, host, opts.HistoryMaxEntries, opts.AnchorSearchWindow)

	t.host.ContextKeys.Set(ContextKeyIsActive, false)
	t.host.View.SetTitle(opts.DefaultTitle)
	t.delegate.Update(ResolvedProvider(t.history))

	t.registrations.Add(host.Commands.Register(CmdClear, func(ctx context.Context, args ...interface{}) error {
		t.ClearInput()
		return nil
	}))

	return t
}

// Provider returns the stable data provider the host widget renders from
func (t *SymbolsTree) Provider() types.DataProvider {
	return t.delegate
}

// History returns the history manager
func (t *SymbolsTree) History() *TreeInputHistory {
	return t.history
}

// GetInput returns the current input, or nil when none is active
func (t *SymbolsTree) GetInput() TreeInput {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

// SetInput makes input the live search. The call blocks until the input's
// resolution was either applied or discarded; a concurrent SetInput call
// supersedes this one, in which case this resolution produces no observable
// side effects at all. An input whose position no longer exists in the
// document behaves exactly like ClearInput.
func (t *SymbolsTree) SetInput(ctx context.Context, input TreeInput) {
	if !t.validateLocation(ctx, input) {
		t.ClearInput()
		return
	}

	t.host.ContextKeys.Set(ContextKeySource, input.Kind())
	t.host.ContextKeys.Set(ContextKeyIsActive, true)
	// Optimistic: published before resolution settles so the host UI
	// enables its result actions without flicker.
	t.host.ContextKeys.Set(ContextKeyHasResult, true)

	if err := t.host.View.Show(ctx); err != nil {
		t.log.Warn("failed to focus view: %v", err)
	}

	t.mu.Lock()
	if t.input == nil || t.input.Kind() != input.Kind() {
		// A different resolver family gets a clean slate; same-kind
		// inputs keep the previous message until resolution lands.
		t.host.View.SetMessage("")
	}
	t.input = input
	t.generation++
	generation := t.generation
	if t.session != nil {
		t.session.Dispose()
		t.session = nil
	}
	t.host.View.SetTitle(input.Title())

	future := make(chan ProviderResult, 1)
	t.delegate.Update(future)
	t.mu.Unlock()

	model, err := input.Resolve(ctx)
	if err != nil {
		future <- ProviderResult{Err: errors.NewResolutionError(input.Kind(), err)}
		close(future)
		// The delegate logs and unsets its backing provider; no retry,
		// recovery is user-initiated.
		return
	}
	future <- ProviderResult{Provider: providerOf(model)}
	close(future)

	t.applyModel(ctx, input, generation, model)
}

func providerOf(model *TreeModel) types.DataProvider {
	if model == nil {
		return nil
	}
	return model.Provider
}

// validateLocation checks that the input's position still resolves to real
// content in the live document.
func (t *SymbolsTree) validateLocation(ctx context.Context, input TreeInput) bool {
	loc := input.Location()
	doc, err := t.host.Documents.Open(ctx, loc.URI)
	if err != nil {
		t.log.Info("input document not openable: %v", err)
		return false
	}
	return doc.ContainsPosition(loc.Range.Start)
}

// applyModel installs a resolved model, unless a newer input superseded the
// one it belongs to.
func (t *SymbolsTree) applyModel(ctx context.Context, input TreeInput, generation uint64, model *TreeModel) {
	t.mu.Lock()
	if t.generation != generation {
		t.mu.Unlock()
		t.log.Debug("discarding superseded resolution for %s input", input.Kind())
		if model != nil {
			model.dispose()
		}
		return
	}

	if model == nil || model.Empty {
		t.clearLocked()
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	// Capturing the history entry opens the document; keep that outside
	// the state lock. Nothing is committed yet, so a resolution that gets
	// superseded during the capture leaves no trace. The entry is
	// re-committed on every non-empty resolution, re-runs included, which
	// keeps the MRU ordering fresh.
	entry, err := t.history.capture(ctx, input)
	if err != nil {
		t.log.Warn("failed to record history entry: %v", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generation != generation {
		t.log.Debug("discarding superseded resolution for %s input", input.Kind())
		model.dispose()
		return
	}

	if entry != nil {
		t.history.commit(entry)
	}
	t.host.View.SetMessage(model.Message)
	t.nav = model.Navigation

	loc := input.Location()
	if model.Navigation != nil && t.host.View.Visible() {
		if selection := model.Navigation.Nearest(loc.URI, loc.Range.Start); selection != nil {
			opts := types.RevealOptions{Select: true, Focus: true, Expand: true}
			if err := t.host.View.Reveal(ctx, selection, opts); err != nil {
				t.log.Warn("failed to reveal nearest result: %v", err)
			}
		}
	}

	session := &types.DisposableStore{}
	var highlights *highlightSession
	if model.Highlights != nil && t.host.Decorator != nil {
		highlights = newHighlightSession(t.host.Decorator, model.Highlights, loc.URI)
		highlights.Apply()
		session.Add(highlights)
	}
	session.Add(model.Provider.OnDidChange(func(node interface{}) {
		t.host.View.SetTitle(input.Title())
		t.host.View.SetMessage(model.Message)
		if highlights != nil {
			highlights.Apply()
		}
	}))
	if model.OnDispose != nil {
		session.Add(types.DisposeFunc(model.OnDispose))
	}
	t.session = session
}

// ClearInput reverts the panel to its idle state: no input, no result
// flags, default title, a "no results" message, and the history view as
// tree content.
func (t *SymbolsTree) ClearInput() {
	t.mu.Lock()
	t.generation++
	t.clearLocked()
	t.mu.Unlock()
}

func (t *SymbolsTree) clearLocked() {
	if t.session != nil {
		t.session.Dispose()
		t.session = nil
	}
	t.input = nil
	t.nav = nil

	t.host.ContextKeys.Set(ContextKeyHasResult, false)
	t.host.ContextKeys.Reset(ContextKeySource)
	t.host.View.SetTitle(t.opts.DefaultTitle)
	if t.history.Size() > 0 {
		t.host.View.SetMessage(msgNoResultsWithHistory)
	} else {
		t.host.View.SetMessage(msgNoResults)
	}
	t.delegate.Update(ResolvedProvider(t.history))
}

// Navigation returns the current model's sequence-navigation helper, or nil
// when no navigable result is shown. Hosts use it for their own
// next/previous-match motions.
func (t *SymbolsTree) Navigation() Navigation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nav
}

// Dispose tears the panel down: session resources, history, command
// registrations, and the host view widget.
func (t *SymbolsTree) Dispose() {
	t.mu.Lock()
	t.generation++
	if t.session != nil {
		t.session.Dispose()
		t.session = nil
	}
	t.input = nil
	t.nav = nil
	t.mu.Unlock()

	t.registrations.Dispose()
	t.history.Dispose()
	t.delegate.Dispose()
	t.host.View.Dispose()
}
