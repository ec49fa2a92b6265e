package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rez-project/rez/context"
	"github.com/rez-project/rez/dep"
	"github.com/rez-project/rez/process"
)

var buildCmd = &cobra.Command{
	Use:   "build REQUIREMENT...",
	Short: "Resolve requirements and run every resolved package's collected shell commands in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runResolve(cmd, args)
		if err != nil {
			return err
		}
		if len(result.FailedRequirements) > 0 || len(result.Conflicts) > 0 {
			return recoverable(fmt.Errorf("rez: cannot build: %d unresolved, %d conflicts",
				len(result.FailedRequirements), len(result.Conflicts)))
		}

		reqs := make([]dep.Requirement, 0, len(args))
		for _, a := range args {
			r, err := dep.ParseRequirement(a)
			if err != nil {
				return err
			}
			reqs = append(reqs, r)
		}
		rc, err := context.Build(result, reqs, context.DefaultBuildConfig())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		opts := process.Options{Env: rc.EnvironmentVars}
		for i, line := range rc.ShellCommands {
			log.Info("running build command", zap.Int("step", i+1), zap.String("command", line))
			res, err := process.ExecuteLine(ctx, line, opts)
			if err != nil {
				return recoverable(fmt.Errorf("rez: build step %d (%q): %w", i+1, line, err))
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
			if res.ExitCode != 0 {
				return recoverable(fmt.Errorf("rez: build step %d (%q) exited %d", i+1, line, res.ExitCode))
			}
		}
		return nil
	},
}
