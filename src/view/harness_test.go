package view

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
	"symbols-view/src/internal/types"
)

// Hand-written host fakes shared by the tests in this package.

type fakeView struct {
	mu       sync.Mutex
	title    string
	message  string
	visible  bool
	revealed []interface{}
	disposed bool
}

func (v *fakeView) Show(ctx context.Context) error { return nil }

func (v *fakeView) SetTitle(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = title
}

func (v *fakeView) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

func (v *fakeView) SetMessage(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = message
}

func (v *fakeView) Message() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}

func (v *fakeView) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *fakeView) Reveal(ctx context.Context, node interface{}, opts types.RevealOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revealed = append(v.revealed, node)
	return nil
}

func (v *fakeView) Revealed() []interface{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]interface{}(nil), v.revealed...)
}

func (v *fakeView) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disposed = true
}

type fakeContextKeys struct {
	mu   sync.Mutex
	keys map[string]interface{}
}

func newFakeContextKeys() *fakeContextKeys {
	return &fakeContextKeys{keys: make(map[string]interface{})}
}

func (c *fakeContextKeys) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = value
}

func (c *fakeContextKeys) Reset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
}

func (c *fakeContextKeys) Get(key string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[key]
}

type fakeRegistry struct {
	mu       sync.Mutex
	handlers map[string]types.CommandHandler
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{handlers: make(map[string]types.CommandHandler)}
}

func (r *fakeRegistry) Register(id string, handler types.CommandHandler) types.Disposable {
	r.mu.Lock()
	r.handlers[id] = handler
	r.mu.Unlock()
	return types.DisposeFunc(func() {
		r.mu.Lock()
		delete(r.handlers, id)
		r.mu.Unlock()
	})
}

func (r *fakeRegistry) Execute(ctx context.Context, id string, args ...interface{}) error {
	r.mu.Lock()
	handler, ok := r.handlers[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown command %q", id)
	}
	return handler(ctx, args...)
}

type fakeQuickPick struct {
	// pick selects the item with this label; empty dismisses.
	pick string
}

func (q *fakeQuickPick) Pick(ctx context.Context, items []types.PickItem) (*types.PickItem, error) {
	for i := range items {
		if items[i].Label == q.pick {
			return &items[i], nil
		}
	}
	return nil, nil
}

type fakeNavigator struct {
	mu     sync.Mutex
	opened []protocol.Location
}

func (n *fakeNavigator) OpenEditor(ctx context.Context, loc protocol.Location) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, loc)
	return nil
}

func (n *fakeNavigator) Opened() []protocol.Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]protocol.Location(nil), n.opened...)
}

type fakeDecorator struct {
	mu      sync.Mutex
	applied map[uri.URI][]protocol.Range
	clears  int
}

func newFakeDecorator() *fakeDecorator {
	return &fakeDecorator{applied: make(map[uri.URI][]protocol.Range)}
}

func (d *fakeDecorator) Highlight(docURI uri.URI, ranges []protocol.Range) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied[docURI] = ranges
}

func (d *fakeDecorator) ClearHighlights() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied = make(map[uri.URI][]protocol.Range)
	d.clears++
}

func (d *fakeDecorator) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// fakeProvider is a flat, static data provider
type fakeProvider struct {
	emitter types.Emitter
	nodes   []interface{}
}

func (p *fakeProvider) GetTreeItem(ctx context.Context, node interface{}) (types.TreeItem, error) {
	return types.TreeItem{Label: fmt.Sprint(node)}, nil
}

func (p *fakeProvider) GetChildren(ctx context.Context, node interface{}) ([]interface{}, error) {
	if node != nil {
		return nil, nil
	}
	return p.nodes, nil
}

func (p *fakeProvider) GetParent(ctx context.Context, node interface{}) (interface{}, error) {
	return nil, nil
}

func (p *fakeProvider) OnDidChange(listener func(node interface{})) types.Disposable {
	return p.emitter.Subscribe(listener)
}

// fakeNavigation always returns the same node
type fakeNavigation struct {
	node interface{}
}

func (n *fakeNavigation) Nearest(docURI uri.URI, pos protocol.Position) interface{} {
	return n.node
}

// fakeHighlights returns fixed ranges for one document
type fakeHighlights struct {
	docURI uri.URI
	ranges []protocol.Range
}

func (h *fakeHighlights) For(docURI uri.URI) []protocol.Range {
	if docURI != h.docURI {
		return nil
	}
	return h.ranges
}

// fakeInput is a scripted TreeInput. A non-nil gate blocks Resolve until
// the channel is closed; started is closed when Resolve begins.
type fakeInput struct {
	kind    string
	title   string
	loc     protocol.Location
	model   *TreeModel
	err     error
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *fakeInput) Kind() string                { return f.kind }
func (f *fakeInput) Title() string               { return f.title }
func (f *fakeInput) Location() protocol.Location { return f.loc }

func (f *fakeInput) Resolve(ctx context.Context) (*TreeModel, error) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.model, f.err
}

func (f *fakeInput) With(pos protocol.Position) TreeInput {
	clone := &fakeInput{
		kind:  f.kind,
		title: f.title,
		model: f.model,
		err:   f.err,
		loc: protocol.Location{
			URI:   f.loc.URI,
			Range: protocol.Range{Start: pos, End: pos},
		},
	}
	return clone
}

// gatedStore wraps a document store and, once armed, blocks Open calls for
// one target document until released. entered is closed when the first
// gated Open begins waiting.
type gatedStore struct {
	inner   types.DocumentStore
	target  uri.URI
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(inner types.DocumentStore, target uri.URI) *gatedStore {
	return &gatedStore{
		inner:   inner,
		target:  target,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Open(ctx context.Context, docURI uri.URI) (types.Document, error) {
	if docURI == s.target && s.armed.Load() {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.inner.Open(ctx, docURI)
}

// testHost wires a full fake host around an in-memory document store
type testHost struct {
	view      *fakeView
	keys      *fakeContextKeys
	registry  *fakeRegistry
	store     *documents.Store
	navigator *fakeNavigator
	quickPick *fakeQuickPick
	decorator *fakeDecorator
}

func newTestHost() *testHost {
	return &testHost{
		view:      &fakeView{visible: true},
		keys:      newFakeContextKeys(),
		registry:  newFakeRegistry(),
		store:     documents.NewStore(),
		navigator: &fakeNavigator{},
		quickPick: &fakeQuickPick{},
		decorator: newFakeDecorator(),
	}
}

func (h *testHost) host() Host {
	return Host{
		View:        h.view,
		ContextKeys: h.keys,
		Commands:    h.registry,
		Documents:   h.store,
		Navigator:   h.navigator,
		QuickPick:   h.quickPick,
		Decorator:   h.decorator,
	}
}

func (h *testHost) newTree() *SymbolsTree {
	return NewSymbolsTree(h.host(), Options{DefaultTitle: "References"})
}

func testLocation(docURI uri.URI, line, char uint32) protocol.Location {
	pos := protocol.Position{Line: line, Character: char}
	return protocol.Location{URI: docURI, Range: protocol.Range{Start: pos, End: pos}}
}
