package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dependsCmd = &cobra.Command{
	Use:   "depends REQUIREMENT... -- TARGET",
	Short: "Resolve requirements and show what the resolve pulled in TARGET for",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[len(args)-1]
		result, err := runResolve(cmd, args[:len(args)-1])
		if err != nil {
			return err
		}

		rp, ok := result.ResolvedPackages[target]
		if !ok {
			return recoverable(fmt.Errorf("rez: %q is not in the resolved package set", target))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", target, rp.Package.Version.String())
		fmt.Fprintln(cmd.OutOrStdout(), "required by:")
		for _, by := range rp.RequiredBy {
			if by == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "  (top-level)")
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", by)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "depends on:")
		for _, name := range sortedResolvedNames(result) {
			other := result.ResolvedPackages[name]
			for _, by := range other.RequiredBy {
				if by == target {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", other.Package.Name, other.Package.Version.String())
				}
			}
		}
		return nil
	},
}
