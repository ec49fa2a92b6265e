package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rez-project/rez/context"
	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/process"
)

var envCmd = &cobra.Command{
	Use:   "env REQUIREMENT... [-- COMMAND [ARGS...]]",
	Short: "Resolve requirements into a context and run a command (or an interactive shell) inside it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reqArgs, command := splitAtDash(cmd, args)

		reqs := make([]dep.Requirement, 0, len(reqArgs))
		for _, a := range reqArgs {
			r, err := dep.ParseRequirement(a)
			if err != nil {
				return err
			}
			reqs = append(reqs, r)
		}

		ctx := cmd.Context()
		repository, err := openRepository(ctx, cfg, log)
		if err != nil {
			return err
		}

		solver := newSolverForConfig(repository)
		result, err := solver.Solve(ctx, reqs)
		if err != nil {
			return err
		}
		if len(result.FailedRequirements) > 0 || len(result.Conflicts) > 0 {
			return recoverable(fmt.Errorf("rez: cannot build environment: %d unresolved, %d conflicts",
				len(result.FailedRequirements), len(result.Conflicts)))
		}

		rc, err := context.Build(result, reqs, context.DefaultBuildConfig())
		if err != nil {
			return err
		}

		opts := process.Options{Env: rc.EnvironmentVars}
		if len(command) == 0 {
			log.Info("spawning interactive shell in resolved context", zap.Int("packages", len(rc.ResolvedPackages)))
			res, err := process.StartInteractiveShell(opts)
			if err != nil {
				return err
			}
			if res.ExitCode != 0 {
				return recoverable(fmt.Errorf("rez: shell exited %d", res.ExitCode))
			}
			return nil
		}

		res, err := process.Execute(ctx, command, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
		if res.ExitCode != 0 {
			return recoverable(fmt.Errorf("rez: command exited %d", res.ExitCode))
		}
		return nil
	},
}

// splitAtDash separates the requirement list from a trailing
// `-- COMMAND ARGS...`, using cobra's own ArgsLenAtDash accounting so
// `--` itself need not be hunted for by hand.
func splitAtDash(cmd *cobra.Command, args []string) (reqs []string, command []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}
