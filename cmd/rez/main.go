/*
Command rez is the collaborator CLI named informationally in
spec.md §6: a thin front end over the core resolve/context/repo/rex
engine. It is not part of the core contract — subcommands are free to
be replaced or extended without changing the packages they wire
together.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "rez",
	Short:         "rez resolves and activates package environments",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("repo"); v != "" {
			c.RepoRoot = v
		}
		cfg = c

		zc := zap.NewProductionConfig()
		if cfg.LogLevel == "debug" {
			zc = zap.NewDevelopmentConfig()
		}
		zl, err := zc.Build()
		if err != nil {
			return err
		}
		log = zl
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("repo", "", "repository root (overrides REZ_REPO_ROOT)")
	rootCmd.AddCommand(resolveCmd, envCmd, searchCmd, dependsCmd, contextCmd, buildCmd)
}

func main() {
	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rez: %v\n", err)
		os.Exit(exitCode(err))
	}
}
