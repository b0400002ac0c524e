// Package cmd provides the CLI commands for forumdb.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/pkg/logger"
)

// NewRootCmd creates the root command for the forumdb CLI.
func NewRootCmd() *cobra.Command {
	var logLevel string
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "forumdb",
		Short: "Load a forum corpus into MongoDB and author posts against it",
		Long: `forumdb bulk-loads Posts.json, Tags.json and Votes.json into MongoDB,
indexing a searchable list of terms for every post. It can then post
questions and answers, cast votes and search questions by keyword.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			*cfg = *loaded
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger.Init(cfg.LogLevel)
			logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(newLoadCmd(cfg))
	cmd.AddCommand(newAskCmd(cfg))
	cmd.AddCommand(newAnswerCmd(cfg))
	cmd.AddCommand(newVoteCmd(cfg))
	cmd.AddCommand(newSearchCmd(cfg))
	cmd.AddCommand(newServeCmd(cfg))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
