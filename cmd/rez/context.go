package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rez-project/rez/context"
	"github.com/rez-project/rez/rex"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Inspect and export saved context files (.rxt/.rxtb)",
}

var contextViewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Print a saved context's resolved packages and status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := context.ReadContextFile(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "id:     %s\n", rc.ID)
		if rc.Name != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "name:   %s\n", rc.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", rc.Status)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tREQUIRED BY")
		for _, pr := range rc.ResolvedPackages {
			v := pr.Version
			if pr.Versionless {
				v = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", pr.Name, v, joinRequiredBy(pr.RequiredBy))
		}
		return w.Flush()
	},
}

var contextExportShell string
var contextExportDotEnv bool

var contextExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a saved context's environment as a shell script or .env file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := context.ReadContextFile(args[0])
		if err != nil {
			return err
		}

		if contextExportDotEnv {
			fmt.Fprint(cmd.OutOrStdout(), context.ExportDotEnv(rc))
			return nil
		}

		sh, err := rex.ParseShell(contextExportShell)
		if err != nil {
			return err
		}
		out, err := context.ExportShellScript(rc, sh)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	contextExportCmd.Flags().StringVar(&contextExportShell, "shell", "bash", "target shell for the exported script")
	contextExportCmd.Flags().BoolVar(&contextExportDotEnv, "dotenv", false, "export as a KEY=VALUE .env file instead of a shell script")
	contextCmd.AddCommand(contextViewCmd, contextExportCmd)
}
