package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCheckCmd creates the read-only audit command.
func newCheckCmd() *cobra.Command {
	var (
		dir        string
		configPath string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit installed packages for deprecated namespaces",
		Long:  `Check scans the installed package set for packages in the retired zendframework and zfcampus namespaces and reports, for each one, the maintained replacement and whether that replacement is published at the installed version. Nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			w, err := openWorkspace(ctx, dir, configPath)
			if err != nil {
				return err
			}
			defer w.Close()

			prog := newProgress(logger)
			sp := newSpinner(ctx, "Resolving replacements...")
			sp.Start()
			findings, err := w.audit(ctx, refresh)
			sp.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Checked %d installed packages", len(w.installed.Packages())))

			if len(findings) == 0 {
				printSuccess("No deprecated packages installed")
				return nil
			}

			printWarning("%d deprecated package(s) installed", len(findings))
			printNewline()
			migratable := 0
			for _, f := range findings {
				switch {
				case f.Replacement == f.Package.Name:
					printDetail("%s %s (no successor package)", f.Package.Name, f.Package.Version)
				case !f.Resolved:
					printDetail("%s %s (replacement %s unavailable at this version)",
						f.Package.Name, f.Package.Version, f.Replacement)
				default:
					printSubstitution(f.Package.Name, f.Replacement, f.Package.Version)
					migratable++
				}
			}

			if migratable > 0 {
				printNewline()
				printNextStep("Migrate them", "depshift migrate")
			}
			return nil
		},
	}

	addWorkspaceFlags(cmd, &dir, &configPath, &refresh)
	return cmd
}
