package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"symbols-view/src/documents"
	"symbols-view/src/internal/common"
	"symbols-view/src/internal/errors"
	"symbols-view/src/internal/types"
)

// Console host: a minimal embedder of the panel core for terminal use. The
// "widget" records state instead of rendering live; the search command
// prints the tree once resolution settled.

// consoleTreeView implements types.TreeView
type consoleTreeView struct {
	mu       sync.Mutex
	title    string
	message  string
	revealed interface{}
}

func (v *consoleTreeView) Show(ctx context.Context) error { return nil }

func (v *consoleTreeView) SetTitle(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = title
}

func (v *consoleTreeView) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

func (v *consoleTreeView) SetMessage(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = message
}

func (v *consoleTreeView) Message() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}

func (v *consoleTreeView) Visible() bool { return true }

func (v *consoleTreeView) Reveal(ctx context.Context, node interface{}, opts types.RevealOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revealed = node
	return nil
}

func (v *consoleTreeView) Revealed() interface{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.revealed
}

func (v *consoleTreeView) Dispose() {}

// consoleContextKeys implements types.ContextKeys over a plain map
type consoleContextKeys struct {
	mu   sync.Mutex
	keys map[string]interface{}
}

func newConsoleContextKeys() *consoleContextKeys {
	return &consoleContextKeys{keys: make(map[string]interface{})}
}

func (c *consoleContextKeys) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = value
}

func (c *consoleContextKeys) Reset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
}

// consoleRegistry implements types.CommandRegistry
type consoleRegistry struct {
	mu       sync.Mutex
	handlers map[string]types.CommandHandler
}

func newConsoleRegistry() *consoleRegistry {
	return &consoleRegistry{handlers: make(map[string]types.CommandHandler)}
}

func (r *consoleRegistry) Register(id string, handler types.CommandHandler) types.Disposable {
	r.mu.Lock()
	r.handlers[id] = handler
	r.mu.Unlock()
	return types.DisposeFunc(func() {
		r.mu.Lock()
		delete(r.handlers, id)
		r.mu.Unlock()
	})
}

func (r *consoleRegistry) Execute(ctx context.Context, id string, args ...interface{}) error {
	r.mu.Lock()
	handler, ok := r.handlers[id]
	r.mu.Unlock()
	if !ok {
		return errors.NewValidationError("command", fmt.Sprintf("unknown command %q", id))
	}
	return handler(ctx, args...)
}

// consoleQuickPick implements types.QuickPick; the harness is
// non-interactive, so every pick is dismissed.
type consoleQuickPick struct{}

func (consoleQuickPick) Pick(ctx context.Context, items []types.PickItem) (*types.PickItem, error) {
	return nil, nil
}

// consoleNavigator implements types.Navigator by announcing the jump target
type consoleNavigator struct{}

func (consoleNavigator) OpenEditor(ctx context.Context, loc protocol.Location) error {
	common.CLILogger.Info("open %s:%d:%d",
		documents.URIToFilePath(loc.URI), loc.Range.Start.Line+1, loc.Range.Start.Character+1)
	return nil
}

// consoleDecorator implements types.Decorator by counting highlight ranges
type consoleDecorator struct {
	mu     sync.Mutex
	ranges map[uri.URI][]protocol.Range
}

func newConsoleDecorator() *consoleDecorator {
	return &consoleDecorator{ranges: make(map[uri.URI][]protocol.Range)}
}

func (d *consoleDecorator) Highlight(docURI uri.URI, ranges []protocol.Range) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ranges[docURI] = ranges
}

func (d *consoleDecorator) ClearHighlights() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ranges = make(map[uri.URI][]protocol.Range)
}

// Tree rendering colors
var (
	titleColor = color.New(color.FgCyan, color.Bold)
	fileColor  = color.New(color.FgGreen, color.Bold)
	posColor   = color.New(color.FgYellow)
	dimColor   = color.New(color.Faint)
)

// renderTree prints the provider's content to stdout, two levels deep
func renderTree(ctx context.Context, provider types.DataProvider, title, message string) error {
	titleColor.Println(title)
	if message != "" {
		dimColor.Println(message)
	}

	roots, err := provider.GetChildren(ctx, nil)
	if err != nil {
		return err
	}
	for _, root := range roots {
		item, err := provider.GetTreeItem(ctx, root)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", fileColor.Sprint(item.Label), dimColor.Sprint(item.Description))

		children, err := provider.GetChildren(ctx, root)
		if err != nil {
			return err
		}
		for _, child := range children {
			childItem, err := provider.GetTreeItem(ctx, child)
			if err != nil {
				return err
			}
			fmt.Printf("  %s  %s\n", posColor.Sprintf("%-8s", childItem.Description), childItem.Label)
		}
	}
	return nil
}
