package view

import (
	"context"
	"sync"

	"symbols-view/src/internal/common"
	"symbols-view/src/internal/types"
)

// ProviderResult is the settled value of a provider future
type ProviderResult struct {
	Provider types.DataProvider
	Err      error
}

// ProviderFuture delivers a backing provider exactly once. Senders must
// send a single result and close the channel.
type ProviderFuture <-chan ProviderResult

// ResolvedProvider wraps an already-available provider as a future
func ResolvedProvider(p types.DataProvider) ProviderFuture {
	ch := make(chan ProviderResult, 1)
	ch <- ProviderResult{Provider: p}
	close(ch)
	return ch
}

// providerSlot is one Update generation. done is closed once the future
// settled; provider stays nil on rejection.
type providerSlot struct {
	done     chan struct{}
	provider types.DataProvider
	err      error
}

// ProviderDelegate exposes a stable DataProvider identity over a backing
// provider that can be swapped while still in flight. The host widget is
// constructed once against the delegate; every search then swaps the
// backing provider underneath it.
type ProviderDelegate struct {
	mu      sync.Mutex
	emitter types.Emitter
	current *providerSlot
	sub     types.Disposable
	log     *common.SafeLogger
}

// NewProviderDelegate creates a delegate with no backing provider
func NewProviderDelegate() *ProviderDelegate {
	return &ProviderDelegate{log: common.ViewLogger}
}

// Update swaps the backing provider. It stops listening to the previous
// provider and immediately fires a root change so the widget drops into a
// transient loading state. Once future settles, and no newer Update call
// happened meanwhile, the new provider's change events are re-broadcast.
// A rejected future leaves the backing provider unset; the error is logged,
// never returned.
func (d *ProviderDelegate) Update(future ProviderFuture) {
	slot := &providerSlot{done: make(chan struct{})}

	d.mu.Lock()
	if d.sub != nil {
		d.sub.Dispose()
		d.sub = nil
	}
	d.current = slot
	d.mu.Unlock()

	d.emitter.Fire(nil)

	go func() {
		res, ok := <-future
		if !ok {
			res.Err = common.NoActiveProviderError("update")
		}
		slot.provider = res.Provider
		slot.err = res.Err
		close(slot.done)

		d.mu.Lock()
		still := d.current == slot
		if still && slot.provider != nil {
			d.sub = slot.provider.OnDidChange(func(node interface{}) {
				d.emitter.Fire(node)
			})
		}
		d.mu.Unlock()

		if slot.err != nil {
			d.log.Error("backing provider failed to resolve (%s): %v", common.GetErrorCategory(slot.err), slot.err)
			return
		}
		if still && slot.provider != nil {
			d.emitter.Fire(nil)
		}
	}()
}

// getProvider waits for the pending backing provider of op
func (d *ProviderDelegate) getProvider(ctx context.Context, op string) (types.DataProvider, error) {
	d.mu.Lock()
	slot := d.current
	d.mu.Unlock()

	if slot == nil {
		return nil, common.NoActiveProviderError(op)
	}
	select {
	case <-slot.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if slot.provider == nil {
		return nil, common.NoActiveProviderError(op)
	}
	return slot.provider, nil
}

// GetTreeItem implements types.DataProvider
func (d *ProviderDelegate) GetTreeItem(ctx context.Context, node interface{}) (types.TreeItem, error) {
	p, err := d.getProvider(ctx, "getTreeItem")
	if err != nil {
		return types.TreeItem{}, err
	}
	return p.GetTreeItem(ctx, node)
}

// GetChildren implements types.DataProvider
func (d *ProviderDelegate) GetChildren(ctx context.Context, node interface{}) ([]interface{}, error) {
	p, err := d.getProvider(ctx, "getChildren")
	if err != nil {
		return nil, err
	}
	return p.GetChildren(ctx, node)
}

// GetParent implements types.DataProvider
func (d *ProviderDelegate) GetParent(ctx context.Context, node interface{}) (interface{}, error) {
	p, err := d.getProvider(ctx, "getParent")
	if err != nil {
		return nil, err
	}
	return p.GetParent(ctx, node)
}

// OnDidChange implements types.DataProvider
func (d *ProviderDelegate) OnDidChange(listener func(node interface{})) types.Disposable {
	return d.emitter.Subscribe(listener)
}

// Dispose stops listening to the backing provider
func (d *ProviderDelegate) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sub != nil {
		d.sub.Dispose()
		d.sub = nil
	}
	d.current = nil
}
