package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rez-project/rez/version"
)

var (
	searchRange      string
	searchPrerelease bool
	searchLimit      int
)

var searchCmd = &cobra.Command{
	Use:   "search NAME_PATTERN",
	Short: "Search the repository for packages matching a glob pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vr := version.Any()
		if searchRange != "" {
			r, err := version.ParseRange(searchRange)
			if err != nil {
				return err
			}
			vr = r
		}

		ctx := cmd.Context()
		r, err := openRepository(ctx, cfg, log)
		if err != nil {
			return err
		}

		packages, err := r.FindPackages(ctx, args[0], vr, searchLimit, searchPrerelease)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tDESCRIPTION")
		for _, p := range packages {
			v := p.Version.String()
			if p.Versionless {
				v = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, v, p.Description)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchRange, "range", "", "restrict results to a version range")
	searchCmd.Flags().BoolVar(&searchPrerelease, "prerelease", false, "include prerelease-like versions")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results (0 = unlimited)")
}
