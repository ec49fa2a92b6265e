package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/resolve"
)

var resolveAllowPrerelease bool

var resolveCmd = &cobra.Command{
	Use:   "resolve REQUIREMENT...",
	Short: "Resolve a set of package requirements into a package set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runResolve(cmd, args)
		if err != nil {
			return err
		}
		printResolution(cmd, result)
		if len(result.FailedRequirements) > 0 || len(result.Conflicts) > 0 {
			return recoverable(fmt.Errorf("rez: resolution incomplete: %d unresolved, %d conflicts",
				len(result.FailedRequirements), len(result.Conflicts)))
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveAllowPrerelease, "prerelease", false, "allow prerelease-like versions as candidates")
}

// runResolve parses requirement strings, opens the configured
// repository, and runs the solver against it, grounded on
// examples/go/resolve/main.go's "parse args, wire a resolver, run it"
// shape.
func runResolve(cmd *cobra.Command, args []string) (*resolve.ResolutionResult, error) {
	ctx := cmd.Context()

	reqs := make([]dep.Requirement, 0, len(args))
	for _, a := range args {
		r, err := dep.ParseRequirement(a)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}

	r, err := openRepository(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	solverCfg := resolve.DefaultSolverConfig()
	solverCfg.AllowPrerelease = resolveAllowPrerelease
	solver := resolve.NewSolver(newResolverClient(r), solverCfg)

	result, err := solver.Solve(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func printResolution(cmd *cobra.Command, result *resolve.ResolutionResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tREQUIRED BY")
	for _, name := range sortedResolvedNames(result) {
		rp := result.ResolvedPackages[name]
		v := rp.Package.Version.String()
		if rp.Package.Versionless {
			v = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, v, joinRequiredBy(rp.RequiredBy))
	}
	w.Flush()

	for _, fr := range result.FailedRequirements {
		fmt.Fprintf(cmd.ErrOrStderr(), "unresolved: %s\n", fr.String())
	}
	for _, c := range result.Conflicts {
		fmt.Fprintf(cmd.ErrOrStderr(), "conflict: %s\n", c.String())
	}
}
