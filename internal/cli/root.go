package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depshift/pkg/buildinfo"
)

// Execute runs the depshift CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (check,
// migrate, report, cache), configures logging based on the --verbose flag,
// and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "depshift",
		Short:        "Depshift migrates deprecated Composer namespaces to their successors",
		Long:         `Depshift rewrites references to the retired zendframework and zfcampus Composer namespaces into their maintained laminas, laminas-api-tools, and mezzio successors: it audits the installed package set, substitutes replacements during a migrate run, and reconciles composer.json, the vendor dir, and the lock file afterwards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}

// addWorkspaceFlags registers the flags shared by commands that operate on
// a Composer working directory.
func addWorkspaceFlags(cmd *cobra.Command, dir, configPath *string, refresh *bool) {
	cmd.Flags().StringVarP(dir, "dir", "C", ".", "Composer working directory")
	cmd.Flags().StringVar(configPath, "config", "", "path to depshift.toml (default: <dir>/depshift.toml)")
	cmd.Flags().BoolVar(refresh, "refresh", false, "bypass the metadata cache")
}
