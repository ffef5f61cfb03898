package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"go.lsp.dev/protocol"

	"symbols-view/src/config"
	"symbols-view/src/documents"
	"symbols-view/src/internal/common"
	"symbols-view/src/internal/errors"
	"symbols-view/src/references"
	"symbols-view/src/view"
)

// parseTarget parses a "file:line:col" argument with 1-based line/column
func parseTarget(arg string) (protocol.Location, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 {
		return protocol.Location{}, errors.NewValidationError("target", "expected file:line:col")
	}

	col, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || col < 1 {
		return protocol.Location{}, errors.NewValidationError("target", "column must be a positive number")
	}
	line, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || line < 1 {
		return protocol.Location{}, errors.NewValidationError("target", "line must be a positive number")
	}

	path := strings.Join(parts[:len(parts)-2], ":")
	abs, err := filepath.Abs(path)
	if err != nil {
		return protocol.Location{}, common.WrapProcessingError("failed to resolve target path", err)
	}

	pos := protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)}
	return protocol.Location{
		URI:   documents.FilePathToURI(abs),
		Range: protocol.Range{Start: pos, End: pos},
	}, nil
}

// RunSearch drives the panel core through one reference search and prints
// the resulting tree.
func RunSearch(ctx context.Context, configPath, root, target string) error {
	cfg := config.LoadConfigWithFallback(configPath)

	loc, err := parseTarget(target)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return common.WrapProcessingError("failed to resolve workspace root", err)
	}

	store := documents.NewStore()
	treeView := &consoleTreeView{}
	host := view.Host{
		View:        treeView,
		ContextKeys: newConsoleContextKeys(),
		Commands:    newConsoleRegistry(),
		Documents:   store,
		Navigator:   consoleNavigator{},
		QuickPick:   consoleQuickPick{},
		Decorator:   newConsoleDecorator(),
	}

	tree := view.NewSymbolsTree(host, view.Options{
		DefaultTitle:       cfg.View.DefaultTitle,
		HistoryMaxEntries:  cfg.History.MaxEntries,
		AnchorSearchWindow: cfg.Anchor.SearchWindow,
	})
	defer tree.Dispose()

	input := references.NewScanInput(store, absRoot, cfg.Scanner, loc)
	tree.SetInput(ctx, input)

	if tree.GetInput() == nil {
		// Resolution came back empty or the position was invalid; the
		// panel fell back to its idle state.
		common.CLILogger.Info("%s", treeView.Message())
		return nil
	}

	return renderTree(ctx, tree.Provider(), treeView.Title(), treeView.Message())
}

// GenerateConfig writes the default configuration to out, or to the
// per-user config location when out is empty.
func GenerateConfig(out string) error {
	if out == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		out = path
	}
	if err := config.GenerateDefaultConfig(out); err != nil {
		return err
	}
	common.CLILogger.Info("wrote default config to %s", out)
	return nil
}
