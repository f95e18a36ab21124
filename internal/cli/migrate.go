package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depshift/pkg/composer"
	"github.com/matzehuels/depshift/pkg/migrate"
)

// newMigrateCmd creates the migration command. It drives a full plugin run
// over the installed set: pool interception, per-package recording, and the
// post-install reconciliation (manifest rewrite, vendor cleanup, lock-only
// update).
func newMigrateCmd() *cobra.Command {
	var (
		dir        string
		configPath string
		refresh    bool
		dryRun     bool
		yes        bool
		noLock     bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Substitute deprecated packages and reconcile manifest and lock state",
		Long:  `Migrate replaces installed zendframework and zfcampus packages with their maintained successors at the same version. Root requirements in composer.json are renamed keeping their constraints, the deprecated packages are removed from the vendor dir, and a lock-only composer update re-resolves the lock file. Substitutions without a published replacement at the installed version are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			w, err := openWorkspace(ctx, dir, configPath)
			if err != nil {
				return err
			}
			defer w.Close()

			var updater migrate.LockUpdater = composer.NewUpdater(w.cfg.Composer.Binary)
			if noLock || dryRun {
				updater = composer.NopUpdater{}
			}

			repo := repository{client: w.registry, refresh: refresh}
			plugin := migrate.NewPlugin(w.rules, repo, updater, logger)

			installed := w.installedPackages()
			pool := migrate.NewCandidatePool(installed...)

			sp := newSpinner(ctx, "Resolving replacements...")
			sp.Start()
			plugin.OnPrePoolCreate(ctx, migrate.PoolEvent{Pool: pool, Installed: installed})
			sp.Stop()

			var proposed []*migrate.Package
			var items []SubstitutionItem
			for _, pkg := range installed {
				if !pool.IsUnacceptable(pkg) {
					continue
				}
				proposed = append(proposed, pkg)
				items = append(items, SubstitutionItem{
					OldName: pkg.Name,
					NewName: w.rules.Replace(pkg.Name),
					Version: pkg.Version,
				})
			}

			if len(proposed) == 0 {
				printSuccess("Nothing to migrate")
				return nil
			}

			if dryRun {
				printInfo("Would substitute %d package(s):", len(items))
				for _, item := range items {
					printSubstitution(item.OldName, item.NewName, item.Version)
				}
				return nil
			}

			if !yes {
				selected, err := runReview(items)
				if err != nil {
					return err
				}
				if len(selected) == 0 {
					printInfo("Nothing selected, aborting")
					return nil
				}
				keep := make(map[string]bool, len(selected))
				for _, item := range selected {
					keep[item.OldName+"@"+item.Version] = true
				}
				filtered := proposed[:0]
				for _, pkg := range proposed {
					if keep[pkg.Name+"@"+pkg.Version] {
						filtered = append(filtered, pkg)
					}
				}
				proposed = filtered
			}

			for _, pkg := range proposed {
				plugin.OnPackageOperation(ctx, migrate.OperationEvent{
					Operation: migrate.InstallOperation{Package: pkg},
				})
			}

			prog := newProgress(logger)
			if err := plugin.OnPostInstall(ctx, migrate.PostInstallEvent{
				Dir:       w.dir,
				Manifest:  w.manifest,
				Installed: w.installed,
			}); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Migrated %d package(s)", len(proposed)))

			printSuccess("Migrated %d package(s)", len(proposed))
			printFile(w.manifest.Path())
			if noLock {
				printNextStep("Update the lock file", "composer update --lock")
			} else {
				printNextStep("Install the replacements", "composer install")
			}
			return nil
		},
	}

	addWorkspaceFlags(cmd, &dir, &configPath, &refresh)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show substitutions without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply all substitutions without interactive review")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "skip the lock-only composer update")
	return cmd
}

// runReview opens the interactive selection list and returns the
// substitutions the user left enabled. A nil slice means the review was
// aborted or everything was deselected.
func runReview(items []SubstitutionItem) ([]SubstitutionItem, error) {
	p := tea.NewProgram(NewReviewModel(items))
	m, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("interactive review: %w", err)
	}
	model, ok := m.(ReviewModel)
	if !ok {
		return nil, nil
	}
	return model.Selected(), nil
}
