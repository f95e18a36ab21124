package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshift/pkg/report"
)

// newReportCmd creates the substitution-map rendering command.
func newReportCmd() *cobra.Command {
	var (
		dir        string
		configPath string
		refresh    bool
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the substitution map as DOT or SVG",
		Long:  `Report renders the old-to-new package mapping of the working directory as a Graphviz graph. Deprecated packages whose replacement is not published at the installed version are drawn with dashed edges.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			w, err := openWorkspace(ctx, dir, configPath)
			if err != nil {
				return err
			}
			defer w.Close()

			sp := newSpinner(ctx, "Resolving replacements...")
			sp.Start()
			findings, err := w.audit(ctx, refresh)
			sp.Stop()
			if err != nil {
				return err
			}

			var edges []report.Edge
			for _, f := range findings {
				if f.Replacement == f.Package.Name {
					continue
				}
				edges = append(edges, report.Edge{
					From:     f.Package.Name,
					To:       f.Replacement,
					Version:  f.Package.Version,
					Resolved: f.Resolved,
				})
			}

			if len(edges) == 0 {
				printSuccess("No deprecated packages installed, nothing to report")
				return nil
			}

			dot := report.ToDOT(edges)

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				if data, err = report.RenderSVG(dot); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (want dot or svg)", format)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			printSuccess("Report written")
			printFile(output)
			return nil
		},
	}

	addWorkspaceFlags(cmd, &dir, &configPath, &refresh)
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
