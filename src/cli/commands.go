package cli

import (
	"github.com/spf13/cobra"

	"symbols-view/src/internal/common"
	versionpkg "symbols-view/src/internal/version"
)

// CLI constants
const (
	CmdSearch   = "search"
	CmdConfig   = "config"
	CmdVersion  = "version"
	FlagConfig  = "config"
	FlagRoot    = "root"
	FlagVerbose = "verbose"
	FlagOut     = "out"
)

// CLI variables
var (
	configPath string
	rootDir    string
	verbose    bool
	outPath    string
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "symbols-view",
	Short: "Symbols View - a terminal harness for the references panel core",
	Long: `Symbols View drives the references/symbols panel core from the terminal:
it resolves a reference search at a document position, renders the result
tree, and exercises the panel's search history.

QUICK START:
  symbols-view search path/to/file.go:14:7   # find references to the word at 14:7
  symbols-view config generate               # write the default config file

AVAILABLE COMMANDS:
  symbols-view search <file:line:col>        # run a reference search and print the tree
  symbols-view config generate               # write the default YAML config
  symbols-view version                       # show version information`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			common.ViewLogger.SetLevel(common.LogDebug)
			common.HistoryLogger.SetLevel(common.LogDebug)
			common.ScanLogger.SetLevel(common.LogDebug)
			common.CLILogger.SetLevel(common.LogDebug)
		}
	},
}

var searchCmd = &cobra.Command{
	Use:   CmdSearch + " <file:line:col>",
	Short: "Search references to the word at a document position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSearch(cmd.Context(), configPath, rootDir, args[0])
	},
}

var configCmd = &cobra.Command{
	Use:   CmdConfig,
	Short: "Manage the symbols-view configuration",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return GenerateConfig(outPath)
	},
}

var versionCmd = &cobra.Command{
	Use:   CmdVersion,
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		common.CLILogger.Info("%s", versionpkg.GetFullVersionInfo())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, FlagConfig, "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, FlagVerbose, false, "enable verbose logging")

	searchCmd.Flags().StringVar(&rootDir, FlagRoot, ".", "workspace root to scan")
	configGenerateCmd.Flags().StringVar(&outPath, FlagOut, "", "output path (default: user config dir)")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(searchCmd, configCmd, versionCmd)
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}
